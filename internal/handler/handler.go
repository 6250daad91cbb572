package handler

import (
	"context"
	"net/http"

	"taskflow/internal/apperr"
	"taskflow/internal/middleware"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentUserID pulls the authenticated user id the auth middleware put
// into the context. Writes the 401 itself when it is missing.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}

	userID, ok := value.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return userID, true
}

// respondError translates a taxonomy error into its HTTP response. Errors
// outside the taxonomy become an opaque 500.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// projectRecipients computes the fan-out set for a project-wide mutation:
// every member of the project, owner included, minus the acting user.
func projectRecipients(
	ctx context.Context,
	memberships repository.MembershipRepositoryInterface,
	project *model.Project,
	actorID uuid.UUID,
) ([]uuid.UUID, error) {
	members, err := memberships.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]struct{}{actorID: {}}
	recipients := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		if _, ok := seen[m.UserID]; ok {
			continue
		}
		seen[m.UserID] = struct{}{}
		recipients = append(recipients, m.UserID)
	}
	if _, ok := seen[project.OwnerID]; !ok {
		recipients = append(recipients, project.OwnerID)
	}
	return recipients, nil
}
