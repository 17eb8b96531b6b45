// Package engine provides mask.Engine implementations.
//
// AttrEngine works on server-rendered HTML: it does not mask keystrokes
// itself but annotates each field with a unique instance ID and the resolved
// option set, which a browser-side masking library reads on page load.
package engine
