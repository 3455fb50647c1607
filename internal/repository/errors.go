// Package repository defines sentinel errors shared across the data
// access layer. Handlers and services compare against these values with
// errors.Is to pick the right HTTP status or user-facing message instead
// of inspecting driver errors directly.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row. Repositories
// translate sql.ErrNoRows into this value so callers never depend on
// database/sql sentinels.
var ErrNotFound = errors.New("not found")

// ErrCPFExists is returned when inserting a resident whose CPF already
// exists in the same condominium (unique_cpf_per_condominium index).
var ErrCPFExists = errors.New("cpf already registered in this condominium")

// ErrSlotTaken is returned when a reservation insert would overlap an
// existing reservation for the same common area and date.
var ErrSlotTaken = errors.New("slot already reserved")
