// Package model defines the data types shared by the crawler, the index
// backends, the query engine and the report writers.
//
// Types in this package carry no behavior beyond small conversions so that
// every other package can depend on it without import cycles.
package model
