// Package logging provides leveled logging for doc-eater.
//
// The log level is read from the LOG_LEVEL environment variable (debug,
// info, warn, error) or forced to debug with DEBUG=true. The default
// level is info.
package logging
