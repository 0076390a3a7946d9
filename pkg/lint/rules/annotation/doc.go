// Package annotation provides lint rules about declared-type annotations on
// mapped attributes.
//
// Rules in this package:
//   - SA201: mapping construct assigned without a Mapped[] annotation
package annotation
