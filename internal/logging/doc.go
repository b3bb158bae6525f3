// Package logging provides leveled logging for the library indexer.
//
// The level defaults to info and can be raised to debug with DEBUG=1 or
// LOG_LEVEL=debug in the environment, or from the logging.level
// configuration key via SetLevel. Scan-time degrade-and-continue events
// (a file that cannot be parsed, a statement that fails) log at Warn or
// Error and never abort the scan.
package logging
