package model

import "time"

// Address groups the postal fields shared by condominium records and
// login sessions. The column names follow the hosted schema
// (rua, numero, complemento, bairro, cidade, estado, cep).
type Address struct {
	Rua         string `json:"rua"`
	Numero      string `json:"numero"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Cidade      string `json:"cidade"`
	Estado      string `json:"estado"`
	CEP         string `json:"cep"`
}

// Condominium mirrors the `condominiums` table. The matricula is the
// registration code that acts as the tenancy key for every other table;
// the legal-representative fields (nomelegal, emaillegal, senha_hash)
// double as the manager's credentials. One manager email may be tied to
// several condominium rows.
//
// Fields:
//  Matricula      – registration code, primary key.
//  NomeCondominio – display name of the condominium.
//  NomeLegal      – legal representative (síndico) name.
//  EmailLegal     – legal representative email, stored lowercase.
//  SenhaHash      – bcrypt hash of the manager password.
//  Ativo          – whether the condominium subscription is active.
type Condominium struct {
	Matricula      string
	NomeCondominio string
	NomeLegal      string
	EmailLegal     string
	SenhaHash      string
	Ativo          bool
	Telefone       string
	Address        Address
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Operator is a seeded platform administrator stored in the `operators`
// table. Operators authenticate through the same login path as managers
// and residents; there is no hardcoded superuser.
type Operator struct {
	ID        uint64
	Nome      string
	Email     string
	SenhaHash string
	Ativo     bool
	CreatedAt time.Time
}
