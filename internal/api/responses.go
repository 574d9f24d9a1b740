package api

import (
	"time"

	"github.com/eugenenazirov/shelf-planner/internal/shelving"
)

type catalogRequest struct {
	Items []itemPayload `json:"items"`
}

type itemPayload struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Weight float64 `json:"weight"`
	Value  float64 `json:"value"`
}

type catalogResponse struct {
	Items     []itemPayload `json:"items"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Message   string        `json:"message,omitempty"`
}

type groupResponse struct {
	Items       []itemPayload `json:"items"`
	TotalWeight float64       `json:"totalWeight"`
}

type dangerousResponse struct {
	Capacity    float64         `json:"capacity"`
	Examined    int             `json:"examined"`
	TotalGroups int             `json:"totalGroups"`
	Groups      []groupResponse `json:"groups"`
}

type shelfResponse struct {
	Shelf       int           `json:"shelf"`
	Items       []itemPayload `json:"items"`
	TotalWeight float64       `json:"totalWeight"`
	TotalValue  float64       `json:"totalValue"`
}

type shelvesResponse struct {
	PlanID            string          `json:"planId"`
	Capacity          float64         `json:"capacity"`
	MaxPerShelf       int             `json:"maxPerShelf"`
	Shelves           []shelfResponse `json:"shelves"`
	Unassigned        []itemPayload   `json:"unassigned"`
	CalculationTimeMs int64           `json:"calculationTimeMs"`
}

type traceStepResponse struct {
	Index     int      `json:"index"`
	Weight    float64  `json:"weight"`
	Value     float64  `json:"value"`
	Selection []string `json:"selection"`
}

type bestResponse struct {
	BestValue   float64             `json:"bestValue"`
	TotalWeight float64             `json:"totalWeight"`
	Items       []itemPayload       `json:"items"`
	Exploration []traceStepResponse `json:"exploration,omitempty"`
}

type reportResponse struct {
	Dangerous *dangerousResponse `json:"dangerous"`
	Shelves   *shelvesResponse   `json:"shelves"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func toItemResponses(items []shelving.Item) []itemPayload {
	out := make([]itemPayload, len(items))
	for i, it := range items {
		out[i] = itemPayload{ID: it.ID, Title: it.Title, Weight: it.Weight, Value: it.Value}
	}
	return out
}

func newDangerousResponse(capacity float64, report shelving.DangerReport) dangerousResponse {
	groups := make([]groupResponse, len(report.Groups))
	for i, g := range report.Groups {
		groups[i] = groupResponse{Items: toItemResponses(g.Items), TotalWeight: g.TotalWeight}
	}
	return dangerousResponse{
		Capacity:    capacity,
		Examined:    report.Examined,
		TotalGroups: len(groups),
		Groups:      groups,
	}
}

func newShelvesResponse(capacity float64, maxPerShelf int, plan shelving.ShelfPlan) shelvesResponse {
	shelves := make([]shelfResponse, len(plan.Shelves))
	for i, s := range plan.Shelves {
		shelves[i] = shelfResponse{
			Shelf:       s.Shelf,
			Items:       toItemResponses(s.Items),
			TotalWeight: s.TotalWeight,
			TotalValue:  s.TotalValue,
		}
	}
	return shelvesResponse{
		Capacity:    capacity,
		MaxPerShelf: maxPerShelf,
		Shelves:     shelves,
		Unassigned:  toItemResponses(plan.Unassigned),
	}
}

func newBestResponse(selection shelving.Selection, steps []shelving.TraceStep) bestResponse {
	resp := bestResponse{
		BestValue:   selection.Value,
		TotalWeight: selection.Weight,
		Items:       toItemResponses(selection.Items),
	}
	for _, step := range steps {
		resp.Exploration = append(resp.Exploration, traceStepResponse{
			Index:     step.Index,
			Weight:    step.Weight,
			Value:     step.Value,
			Selection: step.Selection,
		})
	}
	return resp
}
