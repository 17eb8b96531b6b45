// Package dom provides the minimal document model the field masker works on:
// selector queries returning elements whose attributes can be read and
// written. HTMLDocument implements it over golang.org/x/net/html, with CSS
// selectors compiled by cascadia.
package dom
