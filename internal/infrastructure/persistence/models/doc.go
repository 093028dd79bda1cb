// Package models contains the GORM persistence models of the ledger.
//
// Models are kept separate from domain aggregates: each model converts to
// its aggregate with ToDomain and is built from one with a FromDomain
// constructor. Amounts are stored as decimal(18,4) and frozen rates as
// decimal(20,10).
package models
