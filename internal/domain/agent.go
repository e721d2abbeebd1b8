package domain

import "github.com/mrz1836/astromedia/internal/constants"

// Agent is a roster member shown on the console.
type Agent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Avatar string `json:"avatar"`

	// Efficiency is a cosmetic percentage kept within [85, 100].
	Efficiency float64 `json:"efficiency"`

	Status     constants.AgentStatus `json:"status"`
	LastAction string                `json:"last_action"`
}
