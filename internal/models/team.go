package models

import (
	"time"

	"github.com/lib/pq"
)

type MemberRole string

const (
	RoleAdmin         MemberRole = "admin"
	RoleHiringManager MemberRole = "hiring_manager"
	RoleRecruiter     MemberRole = "recruiter"
	RoleInterviewer   MemberRole = "interviewer"
	RoleCoordinator   MemberRole = "coordinator"
	RoleViewer        MemberRole = "viewer"
)

func (r MemberRole) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

type Permission string

const (
	PermManageTeam         Permission = "manage_team"
	PermManageJobs         Permission = "manage_jobs"
	PermManageCandidates   Permission = "manage_candidates"
	PermScheduleInterviews Permission = "schedule_interviews"
	PermSubmitFeedback     Permission = "submit_feedback"
	PermCreateOffers       Permission = "create_offers"
	PermApproveOffers      Permission = "approve_offers"
	PermSendOffers         Permission = "send_offers"
	PermComment            Permission = "comment"
	PermManageTasks        Permission = "manage_tasks"
	PermViewAnalytics      Permission = "view_analytics"
	PermViewCompliance     Permission = "view_compliance"
	PermManageFiles        Permission = "manage_files"
)

var rolePermissions = map[MemberRole][]Permission{
	RoleAdmin: {
		PermManageTeam, PermManageJobs, PermManageCandidates, PermScheduleInterviews,
		PermSubmitFeedback, PermCreateOffers, PermApproveOffers, PermSendOffers,
		PermComment, PermManageTasks, PermViewAnalytics, PermViewCompliance, PermManageFiles,
	},
	RoleHiringManager: {
		PermManageJobs, PermManageCandidates, PermScheduleInterviews, PermSubmitFeedback,
		PermCreateOffers, PermApproveOffers, PermSendOffers, PermComment, PermManageTasks,
		PermViewAnalytics, PermManageFiles,
	},
	RoleRecruiter: {
		PermManageCandidates, PermScheduleInterviews, PermCreateOffers, PermSendOffers,
		PermComment, PermManageTasks, PermViewAnalytics, PermManageFiles,
	},
	RoleInterviewer: {PermSubmitFeedback, PermComment},
	RoleCoordinator: {PermScheduleInterviews, PermComment, PermManageTasks, PermManageFiles},
	RoleViewer:      {},
}

// PermissionsForRole returns a fresh copy of the permission set granted to role.
func PermissionsForRole(r MemberRole) []Permission {
	src := rolePermissions[r]
	out := make([]Permission, len(src))
	copy(out, src)
	return out
}

// TeamMember permissions are derived from the role when the member is created
// (or the role changes) and stored; they are not recomputed on read.
type TeamMember struct {
	ID          string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID      string         `gorm:"column:user_id;type:text;uniqueIndex" json:"user_id"`
	Name        string         `gorm:"column:name;type:text" json:"name"`
	Email       string         `gorm:"column:email;type:text;index" json:"email"`
	Role        MemberRole     `gorm:"column:role;type:text" json:"role"`
	Permissions pq.StringArray `gorm:"column:permissions;type:text[]" json:"permissions"`
	Active      bool           `gorm:"column:active;default:true" json:"active"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (TeamMember) TableName() string { return "team_members" }

func PermissionStrings(perms []Permission) pq.StringArray {
	out := make(pq.StringArray, 0, len(perms))
	for _, p := range perms {
		out = append(out, string(p))
	}
	return out
}
