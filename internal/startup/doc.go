// Package startup owns the boot sequence: the banner, system and
// configuration reporting, directory validation and the structured
// shutdown log. It keeps main readable.
package startup
