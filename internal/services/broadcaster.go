package services

import "matka-backend/internal/models"

type Broadcaster interface {
	BroadcastResult(result *models.Result)
	BroadcastWin(userID string, record *models.WinnerRecord)
}
