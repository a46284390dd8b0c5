package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/auth"
	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/monocle-dev/tracker/internal/mail"
	"github.com/monocle-dev/tracker/internal/models"
	"github.com/monocle-dev/tracker/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const inviteTokenBytes = 32

// MailQueue accepts messages for background delivery.
type MailQueue interface {
	Enqueue(msg mail.Message) error
}

type MembershipConfig struct {
	FrontendURL string
	From        string
	ExpiryHours int
}

// Membership manages who belongs to a project, directly or through
// emailed invitations.
type Membership struct {
	db     *gorm.DB
	mail   MailQueue
	config MembershipConfig
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewMembership(db *gorm.DB, queue MailQueue, config MembershipConfig, log logrus.FieldLogger) *Membership {
	if config.ExpiryHours <= 0 {
		config.ExpiryHours = 24
	}
	return &Membership{db: db, mail: queue, config: config, log: log, now: time.Now}
}

func newInviteToken() (string, error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashInviteToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// InviteByEmail records a pending invite and queues the invitation mail.
// The plain token is returned for the caller's own use; only its digest is
// stored. expiryHours <= 0 selects the configured default.
func (s *Membership) InviteByEmail(ctx context.Context, project models.Project, inviter auth.Identity, email string, expiryHours int) (models.Invite, string, error) {
	if !project.IsOwner(inviter.ID) {
		return models.Invite{}, "", apperr.Forbidden("Only the project owner can invite members")
	}

	email = normalizeEmail(email)
	if email == "" {
		return models.Invite{}, "", apperr.BadRequest("Email required")
	}
	if !validEmail(email) {
		return models.Invite{}, "", apperr.BadRequest("Invalid email")
	}
	if expiryHours <= 0 {
		expiryHours = s.config.ExpiryHours
	}

	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		if project.CanAccess(user.ID) {
			return models.Invite{}, "", apperr.Conflict("User already added to this project")
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return models.Invite{}, "", apperr.Internal("Failed to send invite", err)
	}

	var pending int64
	err = db.Model(&models.Invite{}).
		Where("project_id = ? AND email = ? AND status = ? AND expires_at > ?", project.ID, email, types.InvitePending, s.now()).
		Count(&pending).Error
	if err != nil {
		return models.Invite{}, "", apperr.Internal("Failed to send invite", err)
	}
	if pending > 0 {
		return models.Invite{}, "", apperr.Conflict("User already invited to this project")
	}

	token, err := newInviteToken()
	if err != nil {
		return models.Invite{}, "", apperr.Internal("Failed to send invite", err)
	}

	invite := models.Invite{
		ProjectID: project.ID,
		Email:     email,
		TokenHash: hashInviteToken(token),
		Status:    types.InvitePending,
		ExpiresAt: s.now().Add(time.Duration(expiryHours) * time.Hour),
	}
	if err := db.Omit("Project").Create(&invite).Error; err != nil {
		return models.Invite{}, "", apperr.Internal("Failed to send invite", err)
	}

	s.queueInviteMail(project, inviter, invite, token, expiryHours)

	return invite, token, nil
}

func (s *Membership) queueInviteMail(project models.Project, inviter auth.Identity, invite models.Invite, token string, expiryHours int) {
	logger := s.log.WithFields(logrus.Fields{
		"project_id": project.ID.String(),
		"invite_id":  invite.ID.String(),
	})

	acceptLink, rejectLink := mail.InviteLinks(s.config.FrontendURL, token)
	msg, err := mail.InviteEmail(s.config.From, invite.Email, mail.InviteData{
		ProjectName: project.Title,
		InviterName: inviter.Name,
		InviteLink:  acceptLink,
		RejectLink:  rejectLink,
		ExpiryHours: expiryHours,
		Year:        s.now().Year(),
	})
	if err != nil {
		logger.WithError(err).Error("Failed to render invite email")
		return
	}

	if err := s.mail.Enqueue(msg); err != nil {
		logger.WithError(err).Warn("Invite email not queued")
		return
	}

	logger.Info("Invite email queued")
}

// findInvite loads the invite for token and checks it can still change
// state.
func (s *Membership) findInvite(tx *gorm.DB, token string) (models.Invite, error) {
	if token == "" {
		return models.Invite{}, apperr.BadRequest("Invalid token")
	}

	var invite models.Invite
	if err := tx.Where("token_hash = ?", hashInviteToken(token)).First(&invite).Error; err != nil {
		return models.Invite{}, lookupError(err, "Invite not found")
	}

	if invite.Expired(s.now()) {
		return models.Invite{}, apperr.Gone("Invite has expired")
	}

	switch invite.Status {
	case types.InviteAccepted:
		return models.Invite{}, apperr.Conflict("Invite already accepted")
	case types.InviteRejected:
		return models.Invite{}, apperr.Conflict("Invite already rejected")
	}

	return invite, nil
}

// settle moves a pending invite to status. It fails with Conflict when a
// concurrent request settled it first.
func settle(tx *gorm.DB, invite *models.Invite, status types.InviteStatus) error {
	result := tx.Model(&models.Invite{}).
		Where("id = ? AND status = ?", invite.ID, types.InvitePending).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.Conflict("Invite already used")
	}
	invite.Status = status
	return nil
}

// AcceptInvite adds the invited user to the project. The invitee must have
// registered by now.
func (s *Membership) AcceptInvite(ctx context.Context, token string) (models.Invite, error) {
	var invite models.Invite

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if invite, err = s.findInvite(tx, token); err != nil {
			return err
		}

		var project models.Project
		if err := tx.Preload("ProjectMemberships").First(&project, "id = ?", invite.ProjectID).Error; err != nil {
			return lookupError(err, "Project not found")
		}

		var user models.User
		if err := tx.Where("email = ?", invite.Email).First(&user).Error; err != nil {
			return lookupError(err, "User not found")
		}

		if project.CanAccess(user.ID) {
			return apperr.Conflict("User already added to this project")
		}

		membership := models.ProjectMembership{UserID: user.ID, ProjectID: project.ID, Role: types.RoleMember}
		if err := tx.Omit("User", "Project").Create(&membership).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("User already added to this project")
			}
			return err
		}

		return settle(tx, &invite, types.InviteAccepted)
	})
	if err != nil {
		return models.Invite{}, storeError("Failed to accept invite", err)
	}

	s.log.WithFields(logrus.Fields{"project_id": invite.ProjectID.String(), "invite_id": invite.ID.String()}).Info("Invite accepted")

	return invite, nil
}

func (s *Membership) RejectInvite(ctx context.Context, token string) (models.Invite, error) {
	var invite models.Invite

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if invite, err = s.findInvite(tx, token); err != nil {
			return err
		}
		return settle(tx, &invite, types.InviteRejected)
	})
	if err != nil {
		return models.Invite{}, storeError("Failed to reject invite", err)
	}

	return invite, nil
}

// AddMember adds a registered user without an invite.
func (s *Membership) AddMember(ctx context.Context, project models.Project, callerID, memberID ids.ID) error {
	if !project.IsOwner(callerID) {
		return apperr.Forbidden("Only the project owner can add members")
	}
	if memberID.IsZero() {
		return apperr.BadRequest("Member id is required")
	}

	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, "id = ?", memberID).Error; err != nil {
		return lookupError(err, "User not found")
	}

	if project.IsMember(memberID) {
		return apperr.Conflict("User already added to this project")
	}

	role := types.RoleMember
	if project.IsOwner(memberID) {
		role = types.RoleOwner
	}

	membership := models.ProjectMembership{UserID: memberID, ProjectID: project.ID, Role: role}
	if err := db.Omit("User", "Project").Create(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("User already added to this project")
		}
		return apperr.Internal("Failed to add member", err)
	}

	return nil
}

func (s *Membership) RemoveMember(ctx context.Context, project models.Project, callerID, memberID ids.ID) error {
	if !project.IsOwner(callerID) {
		return apperr.Forbidden("Only the project owner can remove members")
	}
	if memberID.IsZero() {
		return apperr.BadRequest("Member id is required")
	}
	if project.IsOwner(memberID) {
		return apperr.BadRequest("The project owner cannot be removed")
	}

	result := s.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", project.ID, memberID).
		Delete(&models.ProjectMembership{})
	if result.Error != nil {
		return apperr.Internal("Failed to remove member", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("User is not a member of this project")
	}

	return nil
}

// ListInvites returns every invite of the project whatever its status,
// newest first.
func (s *Membership) ListInvites(ctx context.Context, project models.Project, callerID ids.ID) ([]models.Invite, error) {
	if !project.IsOwner(callerID) {
		return nil, apperr.Forbidden("Only the project owner can view invites")
	}

	var invites []models.Invite
	err := s.db.WithContext(ctx).
		Where("project_id = ?", project.ID).
		Order("created_at DESC").
		Find(&invites).Error
	if err != nil {
		return nil, apperr.Internal("Failed to fetch invites", err)
	}
	return invites, nil
}
