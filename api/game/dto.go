// Package gameapi exposes escape game sessions over HTTP.
package gameapi

import (
	"github.com/beka-birhanu/vinom-escape/game"
	"github.com/beka-birhanu/vinom-escape/game/grid"
)

// NewSessionRequest opens a session in the given play mode.
type NewSessionRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// NewSessionResponse identifies the opened session.
type NewSessionResponse struct {
	ID    string         `json:"id"`
	State *StateResponse `json:"state"`
}

// ObstacleRequest places an obstacle at (x, z).
type ObstacleRequest struct {
	X *int `json:"x" binding:"required"`
	Z *int `json:"z" binding:"required"`
}

// FeedbackRequest scores the agent's last move.
type FeedbackRequest struct {
	Outcome *float64 `json:"outcome" binding:"required"`
}

// CellDTO is a board coordinate.
type CellDTO struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// DecisionDTO describes the agent's last move.
type DecisionDTO struct {
	Direction   string  `json:"direction"`
	Rotation    float64 `json:"rotation"`
	Exploratory bool    `json:"exploratory"`
	From        CellDTO `json:"from"`
	To          CellDTO `json:"to"`
}

// StateResponse is the public state of a session.
type StateResponse struct {
	Size           int          `json:"size"`
	Agent          CellDTO      `json:"agent"`
	Obstacles      []CellDTO    `json:"obstacles"`
	Phase          string       `json:"phase"`
	Result         string       `json:"result"`
	Reason         string       `json:"reason,omitempty"`
	Turns          int          `json:"turns"`
	ExperienceSize int          `json:"experienceSize"`
	PassiveSize    int          `json:"passiveSize"`
	LastDecision   *DecisionDTO `json:"lastDecision,omitempty"`
	Board          string       `json:"board"`
}

// WeightResponse is the block weight of a cell.
type WeightResponse struct {
	X      int     `json:"x"`
	Z      int     `json:"z"`
	Weight float64 `json:"weight"`
}

func cell(p grid.Position) CellDTO {
	return CellDTO{X: p.X, Z: p.Z}
}

func newStateResponse(s game.Snapshot) *StateResponse {
	obstacles := make([]CellDTO, 0, len(s.Obstacles))
	for _, p := range s.Obstacles {
		obstacles = append(obstacles, cell(p))
	}

	r := &StateResponse{
		Size:           s.Size,
		Agent:          cell(s.Agent),
		Obstacles:      obstacles,
		Phase:          s.Phase.String(),
		Result:         s.Result.String(),
		Reason:         s.Reason,
		Turns:          s.Turns,
		ExperienceSize: s.ExperienceSize,
		PassiveSize:    s.PassiveSize,
		Board:          s.Board,
	}
	if d := s.LastDecision; d != nil {
		r.LastDecision = &DecisionDTO{
			Direction:   d.Action.String(),
			Rotation:    d.Rotation,
			Exploratory: d.Exploratory,
			From:        cell(d.From),
			To:          cell(d.To),
		}
	}
	return r
}
