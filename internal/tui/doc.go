// Package tui implements the terminal grid editor for document positions.
//
// The editor bootstraps the grid configuration (display settings, header
// translations, unit and pallet type vocabularies), then shows one page of
// rows in a table. Rows are edited and added in a form whose lookup fields
// suggest products, additional codes, pallets and storage locations as the
// user types; choosing a product fills in its unit. Every save and delete
// reloads the page from the backend. With a change feed URL the page also
// reloads when another client changes the document.
//
// The model is the view layer of the grid logic: it publishes the grid
// configuration, shows notices and receives lookup results and product
// units, all delivered as bubbletea messages.
package tui
