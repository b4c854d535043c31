// Package ingest decodes exception messages arriving from a message bus
// and hands them to a queue writer.
//
// A message carries the exception as JSON or MessagePack:
//
//	{
//	  "exceptionId": 123123124,
//	  "itemNumber": 123123124,
//	  "daysInQueue": 1,
//	  "orderPriority": "High",
//	  "needByDate": "2026-03-15T09:00:00",
//	  "tags": ["epostrx", "Finance_Queue"]
//	}
//
// Decoding runs every field through the exception's validating setters, so
// a message with a negative days-in-queue or an unknown priority is
// rejected with triage.ErrInvalidArgument before anything is written.
//
// The package has no bus client of its own; wire [Handler.Handle] to
// whatever consumer delivers the payloads.
package ingest
