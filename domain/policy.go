package domain

// Authorization policy: pure predicates over (principal, resource). Callers
// must evaluate them against freshly loaded aggregates, never cached ones,
// since membership can change between requests.

// CanReadProject allows the owner and every member.
func CanReadProject(userID string, p *Project) bool {
	return p.IsOwner(userID) || p.IsMember(userID)
}

// CanUpdateProject allows only the owner.
func CanUpdateProject(userID string, p *Project) bool {
	return p.IsOwner(userID)
}

// CanDeleteProject allows only the owner.
func CanDeleteProject(userID string, p *Project) bool {
	return p.IsOwner(userID)
}

// CanManageMembers allows only the owner to add or remove members.
func CanManageMembers(userID string, p *Project) bool {
	return p.IsOwner(userID)
}

// CanCreateTask allows the owner and every member.
func CanCreateTask(userID string, p *Project) bool {
	return p.IsOwner(userID) || p.IsMember(userID)
}

// CanReadTask allows anyone with read access to the parent project.
func CanReadTask(userID string, p *Project) bool {
	return CanReadProject(userID, p)
}

// CanUpdateTask allows the project owner, the task creator, and the current
// assignee. A task whose creator's account was deleted has an empty CreatorID
// and matches no principal on that ground.
func CanUpdateTask(userID string, p *Project, t *Task) bool {
	if p.IsOwner(userID) {
		return true
	}
	if t == nil {
		return false
	}
	if t.CreatorID != "" && t.CreatorID == userID {
		return true
	}
	return t.AssigneeID != "" && t.AssigneeID == userID
}

// CanDeleteTask allows the project owner and the task creator. The assignee
// alone cannot delete.
func CanDeleteTask(userID string, p *Project, t *Task) bool {
	if p.IsOwner(userID) {
		return true
	}
	return t != nil && t.CreatorID != "" && t.CreatorID == userID
}

// CanBeAssigned reports whether userID may hold an assignment in the project:
// the owner or any current member qualifies.
func CanBeAssigned(userID string, p *Project) bool {
	return p.IsOwner(userID) || p.IsMember(userID)
}
