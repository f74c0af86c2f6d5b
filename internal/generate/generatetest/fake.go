// Package generatetest provides fake AI clients for generation tests.
package generatetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ShayCichocki/arbor/pkg/models"
)

// Call records one Generate invocation.
type Call struct {
	System string
	User   string
	Schema string
}

// Response is one scripted reply: either raw JSON or an error.
type Response struct {
	JSON string
	Err  error
}

// ScriptedClient replays Responses in order and repeats the last one
// once they run out. It is safe for concurrent use.
type ScriptedClient struct {
	mu        sync.Mutex
	Responses []Response
	calls     []Call
}

// Generate implements generate.Client.
func (c *ScriptedClient) Generate(ctx context.Context, system, user string, schema models.Schema, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, Call{System: system, User: user, Schema: schema.Name})
	if len(c.Responses) == 0 {
		return fmt.Errorf("no scripted response")
	}
	idx := len(c.calls) - 1
	if idx >= len(c.Responses) {
		idx = len(c.Responses) - 1
	}
	resp := c.Responses[idx]
	if resp.Err != nil {
		return resp.Err
	}
	if err := json.Unmarshal([]byte(resp.JSON), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Calls returns a copy of the recorded calls.
func (c *ScriptedClient) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// PlannerClient answers every schema with a valid list of Width items whose
// names are unique across the whole run. FailOn lets a test inject an error
// for a given call number (1-indexed).
type PlannerClient struct {
	mu     sync.Mutex
	Width  int
	FailOn map[int]error
	calls  []Call
	serial int
}

// Generate implements generate.Client.
func (p *PlannerClient) Generate(ctx context.Context, system, user string, schema models.Schema, out any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, Call{System: system, User: user, Schema: schema.Name})
	if err, ok := p.FailOn[len(p.calls)]; ok {
		return err
	}

	width := p.Width
	if width <= 0 {
		width = 2
	}

	var payload any
	switch schema.Name {
	case "submit_tasks":
		list := models.TaskList{}
		var prev string
		for i := 0; i < width; i++ {
			p.serial++
			name := fmt.Sprintf("task-%d", p.serial)
			ts := models.TaskSpec{
				Name:               name,
				Description:        "Implement " + name,
				Priority:           "medium",
				EstimatedHours:     4,
				AcceptanceCriteria: []string{name + " passes its tests"},
				AgentDirective:     "Build " + name,
			}
			if prev != "" {
				ts.Prerequisites = []string{prev}
			}
			prev = name
			list.Tasks = append(list.Tasks, ts)
		}
		payload = list
	default:
		list := models.SkeletonList{}
		for i := 0; i < width; i++ {
			p.serial++
			name := fmt.Sprintf("%s-%d", schema.Name, p.serial)
			sk := models.Skeleton{
				Name:        name,
				Description: "About " + name,
				Goal:        "Deliver " + name,
				Priority:    "high",
			}
			if schema.Name == "submit_stories" {
				sk.AcceptanceCriteria = []string{name + " is usable"}
			}
			list.Items = append(list.Items, sk)
		}
		payload = list
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Calls returns a copy of the recorded calls.
func (p *PlannerClient) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// CallCount returns the number of Generate invocations so far.
func (p *PlannerClient) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
