// Package mask attaches input masks to form fields.
//
// A Masker resolves a selector against a dom.Document, keeps only elements
// that accept typed text, merges the defaults of the requested Mode with the
// caller's Options and hands the result to an Engine, once per element.
//
// Defaults per mode:
//
//	card   {creditCard: true}
//	phone  {numericOnly: true, prefix: "+7", blocks: [2 3 3 2 2], delimiters: [" (" ") " "-" "-"]}
//	date   {date: true, delimiter: "-", datePattern: [d m Y]}
//	time   {time: true, timePattern: [h m]}
//	number {numeral: true, delimiter: " ", numeralThousandsGroupStyle: thousand}
//
// Overrides win key by key. List values are replaced as a whole, never merged
// element by element.
package mask
