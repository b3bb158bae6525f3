// Package mimesniff classifies files by their content.
//
// Classification always inspects file bytes rather than trusting the
// extension, so a renamed or truncated file is rejected before the tag
// reader ever touches it.
package mimesniff
