package usecase

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/nirik/fas/internal/domain"
)

type membershipKey struct {
	person int64
	group  int64
}

// memStore backs every mock repository. RunInTx snapshots memberships and the
// audit log and restores them when fn fails.
type memStore struct {
	mu          sync.Mutex
	persons     map[int64]domain.Person
	groups      map[int64]domain.Group
	memberships map[membershipKey]domain.Membership
	audit       []domain.AuditLogEntry
	nextID      int64

	profileUpdates int
	failUpdate     error
	failAudit      error
	failSponsor    error
	failListGroups error
}

func newMemStore() *memStore {
	return &memStore{
		persons:     map[int64]domain.Person{},
		groups:      map[int64]domain.Group{},
		memberships: map[membershipKey]domain.Membership{},
		nextID:      1,
	}
}

func (s *memStore) addPerson(username string, profile domain.Profile) domain.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := domain.Person{
		ID:            s.nextID,
		Username:      username,
		Email:         username + "@example.org",
		HumanName:     profile.HumanName,
		Telephone:     profile.Telephone,
		PostalAddress: profile.PostalAddress,
		CountryCode:   profile.CountryCode,
		Active:        true,
	}
	s.nextID++
	s.persons[p.ID] = p
	return p
}

func (s *memStore) addGroup(name string, prerequisite *domain.Group) domain.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := domain.Group{ID: s.nextID, Name: name, DisplayName: name}
	if prerequisite != nil {
		g.PrerequisiteID = &prerequisite.ID
	}
	s.nextID++
	s.groups[g.ID] = g
	return g
}

func (s *memStore) approve(person domain.Person, group domain.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.memberships[membershipKey{person.ID, group.ID}] = domain.Membership{
		PersonID:     person.ID,
		GroupID:      group.ID,
		Status:       domain.StatusApproved,
		SponsorID:    &person.ID,
		ApprovalTime: &now,
	}
}

func (s *memStore) membership(person domain.Person, group domain.Group) (domain.Membership, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memberships[membershipKey{person.ID, group.ID}]
	return m, ok
}

func (s *memStore) person(id int64) domain.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persons[id]
}

func (s *memStore) auditEntries() []domain.AuditLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.audit)
}

type mockPersonRepo struct{ s *memStore }

func (r mockPersonRepo) Get(ctx context.Context, id int64) (domain.Person, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.persons[id]
	if !ok {
		return domain.Person{}, domain.NotFoundError{Resource: "person"}
	}
	return p, nil
}

func (r mockPersonRepo) GetByUsername(ctx context.Context, username string) (domain.Person, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.persons {
		if p.Username == username {
			return p, nil
		}
	}
	return domain.Person{}, domain.NotFoundError{Resource: "person"}
}

func (r mockPersonRepo) UpdateProfile(ctx context.Context, id int64, delta domain.ProfileDelta) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failUpdate != nil {
		return r.s.failUpdate
	}
	r.s.profileUpdates++
	r.s.persons[id] = r.s.persons[id].Apply(delta)
	return nil
}

type mockGroupRepo struct{ s *memStore }

func (r mockGroupRepo) Get(ctx context.Context, id int64) (domain.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.groups[id]
	if !ok {
		return domain.Group{}, domain.NotFoundError{Resource: "group"}
	}
	return g, nil
}

func (r mockGroupRepo) GetByName(ctx context.Context, name string) (domain.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.groups {
		if g.Name == name {
			return g, nil
		}
	}
	return domain.Group{}, domain.NotFoundError{Resource: "group"}
}

func (r mockGroupRepo) List(ctx context.Context) ([]domain.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failListGroups != nil {
		return nil, r.s.failListGroups
	}
	groups := slices.Collect(maps.Values(r.s.groups))
	slices.SortFunc(groups, func(a, b domain.Group) int { return int(a.ID - b.ID) })
	return groups, nil
}

func (r mockGroupRepo) Create(ctx context.Context, group domain.Group) (domain.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.groups {
		if g.Name == group.Name {
			return domain.Group{}, domain.ErrGroupExists
		}
	}
	group.ID = r.s.nextID
	r.s.nextID++
	r.s.groups[group.ID] = group
	return group, nil
}

func (r mockGroupRepo) SetPrerequisite(ctx context.Context, groupID int64, prerequisiteID *int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.groups[groupID]
	if !ok {
		return domain.NotFoundError{Resource: "group"}
	}
	g.PrerequisiteID = prerequisiteID
	r.s.groups[groupID] = g
	return nil
}

type mockMembershipRepo struct{ s *memStore }

func (r mockMembershipRepo) Get(ctx context.Context, personID, groupID int64) (domain.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.memberships[membershipKey{personID, groupID}]
	if !ok {
		return domain.Membership{}, domain.NotFoundError{Resource: "membership"}
	}
	return m, nil
}

func (r mockMembershipRepo) ListByPerson(ctx context.Context, personID int64) ([]domain.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var held []domain.Membership
	for k, m := range r.s.memberships {
		if k.person == personID {
			held = append(held, m)
		}
	}
	slices.SortFunc(held, func(a, b domain.Membership) int { return int(a.GroupID - b.GroupID) })
	return held, nil
}

func (r mockMembershipRepo) Apply(ctx context.Context, personID, groupID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := membershipKey{personID, groupID}
	if _, ok := r.s.memberships[key]; ok {
		return domain.ErrAlreadyApplied
	}
	r.s.memberships[key] = domain.Membership{
		PersonID: personID,
		GroupID:  groupID,
		Status:   domain.StatusUnapproved,
	}
	return nil
}

func (r mockMembershipRepo) Sponsor(ctx context.Context, personID, groupID, sponsorID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failSponsor != nil {
		return r.s.failSponsor
	}
	key := membershipKey{personID, groupID}
	m, ok := r.s.memberships[key]
	if !ok {
		return domain.NotFoundError{Resource: "membership"}
	}
	if m.Approved() {
		return domain.ErrAlreadyApproved
	}
	now := time.Now()
	m.Status = domain.StatusApproved
	m.SponsorID = &sponsorID
	m.ApprovalTime = &now
	r.s.memberships[key] = m
	return nil
}

func (r mockMembershipRepo) Unapprove(ctx context.Context, personID int64, groupIDs []int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range groupIDs {
		key := membershipKey{personID, id}
		m, ok := r.s.memberships[key]
		if !ok || !m.Approved() {
			continue
		}
		m.Status = domain.StatusUnapproved
		m.ApprovalTime = nil
		r.s.memberships[key] = m
		n++
	}
	return n, nil
}

type mockAuditRepo struct{ s *memStore }

func (r mockAuditRepo) Append(ctx context.Context, entry domain.AuditLogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAudit != nil {
		return r.s.failAudit
	}
	entry.ID = int64(len(r.s.audit) + 1)
	r.s.audit = append(r.s.audit, entry)
	return nil
}

type mockTx struct{ s *memStore }

func (tx mockTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.s.mu.Lock()
	memberships := maps.Clone(tx.s.memberships)
	audit := slices.Clone(tx.s.audit)
	tx.s.mu.Unlock()

	if err := fn(ctx); err != nil {
		tx.s.mu.Lock()
		tx.s.memberships = memberships
		tx.s.audit = audit
		tx.s.mu.Unlock()
		return err
	}
	return nil
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (n *mockNotifier) Enqueue(ctx context.Context, msg domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

type mockPublisher struct {
	published []domain.AuditLogEntry
}

func (p *mockPublisher) PublishAudit(ctx context.Context, entry domain.AuditLogEntry) error {
	p.published = append(p.published, entry)
	return nil
}

type mockCountries map[string]bool

func (c mockCountries) Contains(code string) bool {
	return c[code]
}

var testCountries = mockCountries{"US": true, "DE": true, "JP": true}

var testConfig = domain.Config{
	ClaGroup:      "cla_done",
	ClaMetaGroup:  "cla_fpca",
	AdminGroups:   []string{"accounts"},
	LegalEmail:    "legal@example.org",
	AccountsEmail: "accounts@example.org",
	BaseURL:       "https://accounts.example.org",
}

var completeProfile = domain.Profile{
	HumanName:     "Alice Example",
	Telephone:     "+1 (555) 123-4567",
	PostalAddress: "123 Main St",
	CountryCode:   "US",
}

// fixture wires every usecase to one memStore.
type fixture struct {
	store     *memStore
	notifier  *mockNotifier
	events    *mockPublisher
	cla       domain.Group
	meta      domain.Group
	accounts  domain.Group
	admin     domain.Person
	agreement *AgreementUsecase
	revoke    *RevocationUsecase
	members   *MembershipUsecase
	groupsUC  *GroupUsecase
}

func newFixture() *fixture {
	s := newMemStore()
	f := &fixture{
		store:    s,
		notifier: &mockNotifier{},
		events:   &mockPublisher{},
	}
	f.cla = s.addGroup(testConfig.ClaGroup, nil)
	f.meta = s.addGroup(testConfig.ClaMetaGroup, nil)
	f.accounts = s.addGroup("accounts", nil)
	f.admin = s.addPerson("admin", completeProfile)
	s.approve(f.admin, f.accounts)

	persons := mockPersonRepo{s}
	groups := mockGroupRepo{s}
	memberships := mockMembershipRepo{s}
	audit := mockAuditRepo{s}
	tx := mockTx{s}
	admin := NewGroupAdminChecker(testConfig, groups, memberships)

	f.agreement = NewAgreementUsecase(testConfig, persons, groups, memberships, audit, tx, testCountries, f.notifier, f.events)
	f.revoke = NewRevocationUsecase(testConfig, persons, groups, memberships, audit, tx, admin, f.notifier, f.events)
	f.members = NewMembershipUsecase(testConfig, persons, groups, memberships, audit, tx, admin, f.notifier, f.events)
	f.groupsUC = NewGroupUsecase(persons, groups, audit, tx, admin, f.events)
	return f
}
