package shopify

// cartFields is the snapshot selection shared by every cart operation.
// lines(first: 100) matches the storefront's display limit.
const cartFields = `
      id
      checkoutUrl
      totalQuantity
      cost {
        totalAmount {
          amount
          currencyCode
        }
      }
      lines(first: 100) {
        edges {
          node {
            id
            quantity
            merchandise {
              ... on ProductVariant {
                id
                title
                image {
                  url
                  altText
                }
                product {
                  title
                  handle
                }
                priceV2 {
                  amount
                  currencyCode
                }
              }
            }
          }
        }
      }`

const getCartQuery = `
  query cart($cartId: ID!) {
    cart(id: $cartId) {` + cartFields + `
    }
  }
`

const createCartMutation = `
  mutation cartCreate($input: CartInput!) {
    cartCreate(input: $input) {
      cart {` + cartFields + `
      }
      userErrors {
        field
        message
      }
    }
  }
`

const cartLinesAddMutation = `
  mutation cartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
    cartLinesAdd(cartId: $cartId, lines: $lines) {
      cart {` + cartFields + `
      }
      userErrors {
        field
        message
      }
    }
  }
`

const cartLinesUpdateMutation = `
  mutation cartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
    cartLinesUpdate(cartId: $cartId, lines: $lines) {
      cart {` + cartFields + `
      }
      userErrors {
        field
        message
      }
    }
  }
`

const cartLinesRemoveMutation = `
  mutation cartLinesRemove($cartId: ID!, $lineIds: [ID!]!) {
    cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
      cart {` + cartFields + `
      }
      userErrors {
        field
        message
      }
    }
  }
`
