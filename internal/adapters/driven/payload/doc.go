// Package payload builds marketplace request bodies from queue rows.
//
// Prices are held as integer cents in the domain and converted with
// shopspring/decimal so that the JSON carries an exact numeric literal
// (12990 cents is sent as 129.9).
package payload
