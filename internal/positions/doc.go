// Package positions provides an HTTP client for the document positions REST
// backend and the row-level edit protocol built on top of it.
//
// A document position is one line item of a warehouse document: a product,
// its quantity and unit, an optional pallet and storage location. The backend
// serves rows page by page and accepts edits, additions and deletions.
//
// # Row protocol
//
//   - Edit: PUT .../documentPositions/{id}.html with the form fields minus the
//     "oper" marker.
//   - Add: PUT .../documentPositions.html with the form fields minus "oper"
//     and "id"; the server assigns identity.
//   - Delete: DELETE .../documentPositions/{id}.html with an empty body.
//
// Every successful edit or add is followed by a full reload of the rows, so
// server-computed fields (conversion, unit) are always what the server says.
// Failures are reported through a notice.Notifier with the server's message.
// Nothing is retried.
//
// # Usage Example
//
//	client := positions.NewClient("http://erp.local:8080")
//	page, err := client.ListRows(ctx, "42", positions.DefaultPageRequest())
//	if err != nil {
//	    log.Fatal(positions.UserMessage(err))
//	}
//
//	editor := positions.NewRowEditor(client, reloader, notice.Log{}, translator)
//	pd := positions.PostDataFromRecord(page.Rows[0])
//	pd[positions.FieldQuantity] = "12"
//	_ = editor.Edit(ctx, pd)
package positions
