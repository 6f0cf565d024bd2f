// Package html extracts readable text from fetched web pages.
//
// Pages are parsed with golang.org/x/net/html. Non-content elements such as
// script and style are dropped and block elements become line breaks, so the
// splitter can still cut on paragraph boundaries.
package html
