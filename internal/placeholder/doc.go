// Package placeholder holds the case-insensitive value map contract templates
// are rendered from, together with the coercion rules (truthiness, numeric
// parsing, document formatting) every pipeline phase shares.
package placeholder
