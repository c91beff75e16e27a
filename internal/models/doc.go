// Package models implements time-dependent linear models
//
//	G(t) = drift + Σ sᵢ(t)·Gᵢ
//
// in two conventions. A generator model evaluates y' = G(t)·y directly. A
// Hamiltonian model takes Hermitian operators and evaluates the Schrödinger
// equation y' = -i·H(t)·y. Either can be expressed in a rotating frame, in
// which case the model evaluates e^{-tF}·G(t)·e^{tF} - F.
package models
