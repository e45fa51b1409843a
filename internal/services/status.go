package services

import (
	"tracksync/internal/domain"
)

// statusMapping translates Tracker workflow statuses into the two Timer
// task states. Unknown statuses default to ACTIVE.
var statusMapping = map[string]domain.TaskStatus{
	"Novo":                domain.TaskStatusActive,
	"Aguardando resposta": domain.TaskStatusActive,
	"Em Andamento":        domain.TaskStatusActive,
	"Resolvendo":          domain.TaskStatusActive,
	"Permanente":          domain.TaskStatusActive,
	"Concluído":           domain.TaskStatusDone,
}

// StatusForIssue maps a Tracker issue status onto a Timer task status
func StatusForIssue(status string) domain.TaskStatus {
	if mapped, ok := statusMapping[status]; ok {
		return mapped
	}
	return domain.TaskStatusActive
}
