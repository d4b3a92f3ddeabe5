package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
)

func toDate(t time.Time) datatypes.Date {
	return datatypes.Date(t)
}

// fakeRepository is an in-memory Repository used by the service tests. Each
// sub-repository view shares the same backing maps, so transactional wiring
// is trivially the identity.
type fakeRepository struct {
	users        map[string]*models.User
	roles        map[string]models.RoleSet
	students     map[uint]*models.Student
	advising     map[string]map[uint]bool
	programs     map[uint]*models.Program
	requirements map[uint][]*models.Requirement
	totalCredits map[uint]int
	courses      map[uint]*models.Course
	offerings    map[uint][]models.SemesterType
	overlaps     map[uint][]*models.Program
	semesters    map[uint]*models.Semester
	plan         map[planKey]*models.DegreePlanEntry
	comments     map[uint]*models.Comment
	notes        []*models.Notification
	applications map[uint]*models.GraduationApplication

	nextID uint
}

type planKey struct {
	studentID uint
	courseID  uint
	programID uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:        make(map[string]*models.User),
		roles:        make(map[string]models.RoleSet),
		students:     make(map[uint]*models.Student),
		advising:     make(map[string]map[uint]bool),
		programs:     make(map[uint]*models.Program),
		requirements: make(map[uint][]*models.Requirement),
		totalCredits: make(map[uint]int),
		courses:      make(map[uint]*models.Course),
		offerings:    make(map[uint][]models.SemesterType),
		overlaps:     make(map[uint][]*models.Program),
		semesters:    make(map[uint]*models.Semester),
		plan:         make(map[planKey]*models.DegreePlanEntry),
		comments:     make(map[uint]*models.Comment),
		applications: make(map[uint]*models.GraduationApplication),
		nextID:       100,
	}
}

func (f *fakeRepository) allocID() uint {
	f.nextID++
	return f.nextID
}

// ===== SEED HELPERS =====

func (f *fakeRepository) seedUser(id, name string, roles ...models.RoleName) *models.User {
	user := &models.User{ID: id, FullName: name, Email: id + "@example.edu"}
	f.users[id] = user
	f.roles[id] = models.RoleSet(roles)
	return user
}

func (f *fakeRepository) seedStudent(id uint, userID, schoolID string) *models.Student {
	student := &models.Student{ID: id, UserID: userID, SchoolStudentID: schoolID}
	f.students[id] = student
	return student
}

func (f *fakeRepository) dropRole(userID string, role models.RoleName) {
	kept := f.roles[userID][:0]
	for _, r := range f.roles[userID] {
		if r != role {
			kept = append(kept, r)
		}
	}
	f.roles[userID] = kept
}

func (f *fakeRepository) seedAdvising(advisorID string, studentID uint) {
	if f.advising[advisorID] == nil {
		f.advising[advisorID] = make(map[uint]bool)
	}
	f.advising[advisorID][studentID] = true
}

func (f *fakeRepository) seedSemester(id uint, name string, start time.Time) *models.Semester {
	semester := &models.Semester{ID: id, Name: name}
	semester.StartDate = toDate(start)
	semester.EndDate = toDate(start.AddDate(0, 4, 0))
	f.semesters[id] = semester
	return semester
}

func (f *fakeRepository) seedCourse(id uint, code string, credits int, prerequisites ...*models.Course) *models.Course {
	course := &models.Course{ID: id, Code: code, Name: code + " course", Credits: credits}
	for _, prereq := range prerequisites {
		course.Prerequisites = append(course.Prerequisites, *prereq)
	}
	f.courses[id] = course
	return course
}

func (f *fakeRepository) seedProgram(id uint, name string) *models.Program {
	program := &models.Program{ID: id, Name: name, Type: models.ProgramTypeDegree}
	f.programs[id] = program
	return program
}

func (f *fakeRepository) seedPlanEntry(studentID, courseID, programID uint, status models.CourseStatus, semesterID *uint) *models.DegreePlanEntry {
	entry := &models.DegreePlanEntry{
		ID:         f.allocID(),
		StudentID:  studentID,
		CourseID:   courseID,
		ProgramID:  programID,
		Status:     status,
		SemesterID: semesterID,
	}
	if course, ok := f.courses[courseID]; ok {
		entry.Course = course
	}
	if semesterID != nil {
		entry.Semester = f.semesters[*semesterID]
	}
	f.plan[planKey{studentID, courseID, programID}] = entry
	return entry
}

// ===== AGGREGATE =====

func (f *fakeRepository) User() repositories.UserRepository             { return &fakeUserRepo{f} }
func (f *fakeRepository) Student() repositories.StudentRepository       { return &fakeStudentRepo{f} }
func (f *fakeRepository) Course() repositories.CourseRepository         { return &fakeCourseRepo{f} }
func (f *fakeRepository) Program() repositories.ProgramRepository       { return &fakeProgramRepo{f} }
func (f *fakeRepository) Semester() repositories.SemesterRepository     { return &fakeSemesterRepo{f} }
func (f *fakeRepository) DegreePlan() repositories.DegreePlanRepository { return &fakePlanRepo{f} }
func (f *fakeRepository) Comment() repositories.CommentRepository       { return &fakeCommentRepo{f} }
func (f *fakeRepository) Notification() repositories.NotificationRepository {
	return &fakeNotificationRepo{f}
}
func (f *fakeRepository) Graduation() repositories.GraduationRepository { return &fakeGraduationRepo{f} }

func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}
func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

// ===== USER =====

type fakeUserRepo struct{ f *fakeRepository }

func (r *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	if user, ok := r.f.users[id]; ok {
		return user, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	for _, user := range r.f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var result []*models.User
	for _, user := range r.f.users {
		if filters.Role != nil && !r.f.roles[user.ID].Has(*filters.Role) {
			continue
		}
		if filters.Query != "" && !strings.Contains(strings.ToLower(user.FullName), strings.ToLower(filters.Query)) {
			continue
		}
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, tx *gorm.DB, role models.RoleName) ([]*models.User, error) {
	var result []*models.User
	for _, user := range r.f.users {
		if r.f.roles[user.ID].Has(role) {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeUserRepo) GetRoles(ctx context.Context, tx *gorm.DB, userID string) (models.RoleSet, error) {
	if _, ok := r.f.users[userID]; !ok {
		return nil, repositories.ErrNotFound
	}
	return r.f.roles[userID], nil
}

func (r *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.f.users[user.ID] = user
	if r.f.roles[user.ID] == nil {
		r.f.roles[user.ID] = models.RoleSet{}
	}
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	if _, ok := r.f.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.f.users, id)
	delete(r.f.roles, id)
	return nil
}

func (r *fakeUserRepo) AssignRole(ctx context.Context, tx *gorm.DB, userID string, role models.RoleName) error {
	if !r.f.roles[userID].Has(role) {
		r.f.roles[userID] = append(r.f.roles[userID], role)
	}
	return nil
}

func (r *fakeUserRepo) RemoveRole(ctx context.Context, tx *gorm.DB, userID string, role models.RoleName) error {
	r.f.dropRole(userID, role)
	return nil
}

// ===== STUDENT =====

type fakeStudentRepo struct{ f *fakeRepository }

func (r *fakeStudentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	if student, ok := r.f.students[id]; ok {
		return student, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeStudentRepo) GetBySchoolID(ctx context.Context, tx *gorm.DB, schoolID string) (*models.Student, error) {
	for _, student := range r.f.students {
		if student.SchoolStudentID == schoolID {
			return student, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeStudentRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Student, error) {
	for _, student := range r.f.students {
		if student.UserID == userID {
			return student, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeStudentRepo) HasAdvisor(ctx context.Context, tx *gorm.DB, advisorUserID string, studentID uint) (bool, error) {
	return r.f.advising[advisorUserID][studentID], nil
}

func (r *fakeStudentRepo) AdvisorsOf(ctx context.Context, tx *gorm.DB, studentID uint) ([]*models.User, error) {
	var result []*models.User
	for advisorID, students := range r.f.advising {
		if students[studentID] {
			if user, ok := r.f.users[advisorID]; ok {
				result = append(result, user)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeStudentRepo) AdviseeIDs(ctx context.Context, tx *gorm.DB, advisorUserID string) ([]uint, error) {
	var result []uint
	for studentID := range r.f.advising[advisorUserID] {
		result = append(result, studentID)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result, nil
}

func (r *fakeStudentRepo) CreateAdvisingRelation(ctx context.Context, tx *gorm.DB, advisorUserID string, studentID uint) error {
	if r.f.advising[advisorUserID] == nil {
		r.f.advising[advisorUserID] = make(map[uint]bool)
	}
	r.f.advising[advisorUserID][studentID] = true
	return nil
}

func (r *fakeStudentRepo) DeleteAdvisingRelation(ctx context.Context, tx *gorm.DB, advisorUserID string, studentID uint) error {
	if !r.f.advising[advisorUserID][studentID] {
		return repositories.ErrNotFound
	}
	delete(r.f.advising[advisorUserID], studentID)
	return nil
}

// ===== COURSE =====

type fakeCourseRepo struct{ f *fakeRepository }

func (r *fakeCourseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	if course, ok := r.f.courses[id]; ok {
		return course, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeCourseRepo) Prerequisites(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Course, error) {
	course, ok := r.f.courses[courseID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	result := make([]*models.Course, 0, len(course.Prerequisites))
	for i := range course.Prerequisites {
		result = append(result, &course.Prerequisites[i])
	}
	return result, nil
}

func (r *fakeCourseRepo) Offerings(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.SemesterType, error) {
	return r.f.offerings[courseID], nil
}

func (r *fakeCourseRepo) CertificateOverlaps(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Program, error) {
	return r.f.overlaps[courseID], nil
}

// ===== PROGRAM =====

type fakeProgramRepo struct{ f *fakeRepository }

func (r *fakeProgramRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Program, error) {
	if program, ok := r.f.programs[id]; ok {
		return program, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeProgramRepo) TotalRequiredCredits(ctx context.Context, tx *gorm.DB, programID uint) (int, error) {
	return r.f.totalCredits[programID], nil
}

func (r *fakeProgramRepo) Requirements(ctx context.Context, tx *gorm.DB, programID uint) ([]*models.Requirement, error) {
	return r.f.requirements[programID], nil
}

// ===== SEMESTER =====

type fakeSemesterRepo struct{ f *fakeRepository }

func (r *fakeSemesterRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Semester, error) {
	if semester, ok := r.f.semesters[id]; ok {
		return semester, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeSemesterRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.Semester, error) {
	var result []*models.Semester
	for _, semester := range r.f.semesters {
		result = append(result, semester)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartsBefore(result[j]) })
	return result, nil
}

// ===== DEGREE PLAN =====

type fakePlanRepo struct{ f *fakeRepository }

func (r *fakePlanRepo) PlanFor(ctx context.Context, tx *gorm.DB, studentID, programID uint) ([]*models.DegreePlanEntry, error) {
	var result []*models.DegreePlanEntry
	for key, entry := range r.f.plan {
		if key.studentID == studentID && key.programID == programID {
			result = append(result, entry)
		}
	}
	// Semester start date ascending with unscheduled entries last, course ID
	// as the tiebreaker, matching the store's ordering contract.
	sort.Slice(result, func(i, j int) bool {
		si, sj := result[i].Semester, result[j].Semester
		switch {
		case si == nil && sj == nil:
			return result[i].CourseID < result[j].CourseID
		case si == nil:
			return false
		case sj == nil:
			return true
		case si.StartsBefore(sj):
			return true
		case sj.StartsBefore(si):
			return false
		default:
			return result[i].CourseID < result[j].CourseID
		}
	})
	return result, nil
}

func (r *fakePlanRepo) StatusOf(ctx context.Context, tx *gorm.DB, studentID, courseID, programID uint) (*models.DegreePlanEntry, error) {
	if entry, ok := r.f.plan[planKey{studentID, courseID, programID}]; ok {
		return entry, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakePlanRepo) SetStatus(ctx context.Context, tx *gorm.DB, studentID, courseID, programID uint, status models.CourseStatus, semesterID *uint) (*models.DegreePlanEntry, error) {
	entry, ok := r.f.plan[planKey{studentID, courseID, programID}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	entry.Status = status
	if status == models.StatusUnplanned {
		entry.SemesterID = nil
		entry.Semester = nil
	} else if semesterID != nil {
		entry.SemesterID = semesterID
		entry.Semester = r.f.semesters[*semesterID]
	}
	return entry, nil
}

// ===== COMMENT =====

type fakeCommentRepo struct{ f *fakeRepository }

func (r *fakeCommentRepo) Create(ctx context.Context, tx *gorm.DB, comment *models.Comment) error {
	comment.ID = r.f.allocID()
	comment.CreatedAt = time.Now()
	r.f.comments[comment.ID] = comment
	return nil
}

func (r *fakeCommentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Comment, error) {
	if comment, ok := r.f.comments[id]; ok {
		return comment, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeCommentRepo) Update(ctx context.Context, tx *gorm.DB, comment *models.Comment) error {
	if _, ok := r.f.comments[comment.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.f.comments[comment.ID] = comment
	return nil
}

func (r *fakeCommentRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := r.f.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.f.comments, id)
	return nil
}

func (r *fakeCommentRepo) ListForThread(ctx context.Context, tx *gorm.DB, programID, studentID uint) ([]*models.Comment, error) {
	var result []*models.Comment
	for _, comment := range r.f.comments {
		if comment.ProgramID == programID && comment.StudentID == studentID {
			result = append(result, comment)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ===== NOTIFICATION =====

type fakeNotificationRepo struct{ f *fakeRepository }

func (r *fakeNotificationRepo) CreateBatch(ctx context.Context, tx *gorm.DB, notifications []*models.Notification) error {
	for _, notification := range notifications {
		notification.ID = r.f.allocID()
		notification.CreatedAt = time.Now()
		r.f.notes = append(r.f.notes, notification)
	}
	return nil
}

func (r *fakeNotificationRepo) ListForRecipient(ctx context.Context, tx *gorm.DB, recipientID string, filters repositories.NotificationFilters) ([]*models.Notification, int64, error) {
	var result []*models.Notification
	for _, notification := range r.f.notes {
		if notification.RecipientID != recipientID {
			continue
		}
		if filters.UnreadOnly && notification.IsRead {
			continue
		}
		result = append(result, notification)
	}
	return result, int64(len(result)), nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, tx *gorm.DB, id uint, recipientID string) error {
	for _, notification := range r.f.notes {
		if notification.ID == id && notification.RecipientID == recipientID {
			notification.IsRead = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeNotificationRepo) UnreadCount(ctx context.Context, tx *gorm.DB, recipientID string) (int64, error) {
	var count int64
	for _, notification := range r.f.notes {
		if notification.RecipientID == recipientID && !notification.IsRead {
			count++
		}
	}
	return count, nil
}

// ===== GRADUATION =====

type fakeGraduationRepo struct{ f *fakeRepository }

func (r *fakeGraduationRepo) Create(ctx context.Context, tx *gorm.DB, application *models.GraduationApplication) error {
	application.ID = r.f.allocID()
	r.f.applications[application.ID] = application
	return nil
}

func (r *fakeGraduationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.GraduationApplication, error) {
	if application, ok := r.f.applications[id]; ok {
		return application, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeGraduationRepo) GetByStudentAndProgram(ctx context.Context, tx *gorm.DB, studentID, programID uint) (*models.GraduationApplication, error) {
	for _, application := range r.f.applications {
		if application.StudentID == studentID && application.ProgramID == programID {
			return application, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeGraduationRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.GraduationFilters) ([]*models.GraduationApplication, int64, error) {
	var result []*models.GraduationApplication
	for _, application := range r.f.applications {
		if filters.Status != nil && application.Status != *filters.Status {
			continue
		}
		if filters.ProgramID != nil && application.ProgramID != *filters.ProgramID {
			continue
		}
		if len(filters.StudentIDs) > 0 && !containsID(filters.StudentIDs, application.StudentID) {
			continue
		}
		result = append(result, application)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (r *fakeGraduationRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.ApplicationStatus) (*models.GraduationApplication, error) {
	application, ok := r.f.applications[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	application.Status = status
	application.StatusUpdatedAt = time.Now()
	return application, nil
}

func containsID(ids []uint, id uint) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
