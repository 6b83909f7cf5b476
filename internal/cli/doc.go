// Package cli implements the command-line interface for nautiljon-planner.
//
// The root command fetches the Nautiljon release planning, applies the keyword
// filter and writes a JSON, CSV or iCalendar file. Subcommands post the
// releases as chat notifications (notify), repeat the export on a cron
// schedule (watch) and print build information (version).
package cli
