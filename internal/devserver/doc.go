// Package devserver implements an in-memory document positions backend for
// local development and tests.
//
// It serves every route the client uses (display settings, vocabularies,
// row paging with filters, add/edit/delete, lookup searches and the product
// unit query), validates quantities server side, publishes change events on
// /ws/positions and can advertise itself over mDNS.
//
//	srv, err := devserver.New(&devserver.Config{Port: 8080, Advertise: true}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(srv.Run(ctx))
package devserver
