// Package audiotypes defines the audio formats the library indexes.
//
// A file is considered indexable when its extension appears in
// Extensions AND its content-sniffed MIME type appears in MimeTypes.
// The extension check is a cheap pre-filter; the MIME check is what
// actually admits a file, so a renamed text file never makes it into
// the index.
package audiotypes
