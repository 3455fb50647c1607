package model

import "time"

// Resident mirrors the `residents` table. A resident belongs to exactly
// one condominium (matricula) and one unit. CPF digits are unique per
// condominium and are used as the resident's login secret until a real
// credential flow replaces them.
//
// Fields:
//  ID                   – UUID primary key.
//  Matricula            – condominium registration code.
//  NomeCompleto         – full name.
//  CPF                  – Brazilian taxpayer number, digits only.
//  Unidade              – apartment/unit label.
//  ValorCondominioCents – monthly fee in cents, zero when unset.
type Resident struct {
	ID                   string
	Matricula            string
	NomeCompleto         string
	CPF                  string
	Telefone             string
	Email                string
	Unidade              string
	ValorCondominioCents int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
