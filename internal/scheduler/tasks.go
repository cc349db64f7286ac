package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadHandoff = "qualification.lead.handoff"

type LeadHandoffPayload struct {
	ConversationID string `json:"conversationId"`
	OrganizationID string `json:"organizationId"`
	Score          int    `json:"score"`
	Tier           string `json:"tier"`
}

func NewLeadHandoffTask(payload LeadHandoffPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadHandoff, data), nil
}

func ParseLeadHandoffPayload(task *asynq.Task) (LeadHandoffPayload, error) {
	var payload LeadHandoffPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadHandoffPayload{}, err
	}
	return payload, nil
}
