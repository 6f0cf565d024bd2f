// Package normalisers converts fetched markup into plain text documents
// ready for chunking.
package normalisers
