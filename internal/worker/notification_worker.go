package worker

import (
	"github.com/spec-kit/rental-relay/internal/service"
)

// StartNotificationWorker registers notification handlers on the
// dispatcher so lifecycle events reach hosts and guests.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
