// Package cli implements wastectl, the command-line tool administrators use
// to work the deposit review queue against a running WasteHub server.
//
// Commands
//
//	pending [--status S] [--page N] [--limit N]   review queue (status "all" lists everything)
//	summary                                      deposit counts by status
//	verify DEPOSIT_ID [--admin ID] [--credits X]  verify and allocate credits
//	reject DEPOSIT_ID [--admin ID] --reason TEXT  reject a pending deposit
//	hubs                                         collection hubs and rates
//	ledger USER_ID [--page N] [--limit N]        a user's credit ledger
//
// Output is a table when stdout is a terminal and JSON otherwise, or
// always JSON with --json.
package cli
