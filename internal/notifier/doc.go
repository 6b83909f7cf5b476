// Package notifier turns release records into chat notification payloads and
// posts them through a Notifier transport.
//
// Discord webhooks and Twitter are implemented here; the Telegram transport
// lives in the telegram package. Dispatch posts one payload per record,
// logging and counting failures without aborting the run.
package notifier
