// Package gridconfig describes the positions grid (columns, edit widgets,
// validation rules, paging) and bootstraps it from server settings.
//
// Bootstrapping runs four steps strictly one after another, each on the
// same working copy:
//
//  1. fetch the display settings and hide the storage location column when
//     the server says so;
//  2. translate every column header;
//  3. fetch the unit vocabulary into the "givenunit" select;
//  4. fetch the pallet type vocabulary into the "type_of_pallet" select.
//
// Only a config that survived all four steps is frozen and published. A
// failed step publishes nothing and reports the server's message.
package gridconfig
