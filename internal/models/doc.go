// Package models defines the neutral data types exchanged between the content
// gateways, the feed pagers, and the persistence layer. Provider response
// shapes live in their gateway packages; everything downstream of a gateway
// works with these types only.
package models
