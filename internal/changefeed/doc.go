// Package changefeed publishes and consumes document position change events
// over a websocket.
//
// The development backend mounts a Hub on /ws/positions and publishes an
// Event after every successful add, edit or delete. Clients run a Subscriber
// filtered to their document and reload the grid when an event arrives:
//
//	sub := changefeed.NewSubscriber(client.Endpoints.ChangeFeed(), formID,
//	    changefeed.ReloadOnChange(loader))
//	go sub.Run(ctx)
package changefeed
