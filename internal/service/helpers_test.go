package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/arka-labs/gradeflow-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func intPtr(v int) *int {
	return &v
}

type fakeSolutionRepo struct {
	solutions map[uint]models.Solution
	questions map[uint]models.Question
	nextID    uint

	createErr error
	updateErr error
	updates   int
}

func newFakeSolutionRepo(solutions ...models.Solution) *fakeSolutionRepo {
	repo := &fakeSolutionRepo{
		solutions: make(map[uint]models.Solution),
		questions: make(map[uint]models.Question),
		nextID:    1,
	}
	for _, question := range fixtureQuestions() {
		repo.questions[question.ID] = question
	}
	for _, solution := range solutions {
		repo.solutions[solution.ID] = solution
		if solution.ID >= repo.nextID {
			repo.nextID = solution.ID + 1
		}
	}

	return repo
}

// withQuestions mirrors the question preload the real repository performs.
func (r *fakeSolutionRepo) withQuestions(solution models.Solution) models.Solution {
	for i := range solution.Answers {
		if solution.Answers[i].Question.ID == 0 {
			solution.Answers[i].Question = r.questions[solution.Answers[i].QuestionID]
		}
	}

	return solution
}

func (r *fakeSolutionRepo) Create(_ context.Context, solution *models.Solution) error {
	if r.createErr != nil {
		return r.createErr
	}

	solution.ID = r.nextID
	r.nextID++
	for i := range solution.Answers {
		solution.Answers[i].ID = solution.ID*100 + uint(i)
		solution.Answers[i].SolutionID = solution.ID
	}
	r.solutions[solution.ID] = *solution

	return nil
}

func (r *fakeSolutionRepo) GetByID(_ context.Context, id uint) (models.Solution, error) {
	solution, ok := r.solutions[id]
	if !ok {
		return models.Solution{}, gorm.ErrRecordNotFound
	}

	return r.withQuestions(solution), nil
}

func (r *fakeSolutionRepo) GetByAssessmentAndStudent(_ context.Context, assessmentID, studentID uint) (models.Solution, error) {
	for _, solution := range r.solutions {
		if solution.AssessmentID == assessmentID && solution.StudentID == studentID {
			return r.withQuestions(solution), nil
		}
	}

	return models.Solution{}, gorm.ErrRecordNotFound
}

func (r *fakeSolutionRepo) UpdateGradingState(_ context.Context, solution *models.Solution) error {
	if r.updateErr != nil {
		return r.updateErr
	}

	r.updates++
	solution.Version++
	r.solutions[solution.ID] = *solution

	return nil
}

type fakeAssessmentRepo struct {
	assessments map[uint]models.Assessment
}

func newFakeAssessmentRepo(assessments ...models.Assessment) *fakeAssessmentRepo {
	repo := &fakeAssessmentRepo{assessments: make(map[uint]models.Assessment)}
	for _, assessment := range assessments {
		repo.assessments[assessment.ID] = assessment
	}

	return repo
}

func (r *fakeAssessmentRepo) GetByID(_ context.Context, id uint) (models.Assessment, error) {
	assessment, ok := r.assessments[id]
	if !ok {
		return models.Assessment{}, gorm.ErrRecordNotFound
	}

	return assessment, nil
}

type fakeCourseRepo struct {
	courses map[string]models.Course
}

func newFakeCourseRepo(courses ...models.Course) *fakeCourseRepo {
	repo := &fakeCourseRepo{courses: make(map[string]models.Course)}
	for _, course := range courses {
		repo.courses[course.Code] = course
	}

	return repo
}

func (r *fakeCourseRepo) GetByCode(_ context.Context, code string) (models.Course, error) {
	course, ok := r.courses[code]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}

	return course, nil
}

type fakePublisher struct {
	events []GradedEvent
	err    error
}

func (p *fakePublisher) PublishGraded(_ context.Context, event GradedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)

	return nil
}

type fakeGradingEnqueuer struct {
	solutionIDs []uint
	err         error
}

func (e *fakeGradingEnqueuer) EnqueueGradeSolution(_ context.Context, solutionID uint) error {
	if e.err != nil {
		return e.err
	}
	e.solutionIDs = append(e.solutionIDs, solutionID)

	return nil
}

type fakeScorer struct {
	score float64
	err   error
	calls int
}

func (s *fakeScorer) Score(_ context.Context, _, _, _ string) (float64, error) {
	s.calls++

	return s.score, s.err
}

// Fixture: a three question assessment worth 6 marks on course IF2110 with
// thresholds for the descriptive question. The stored solution has the MCQ
// right, the fill in the blank wrong, and a descriptive answer awaiting a
// similarity score.
func fixtureCourse() models.Course {
	return models.Course{
		ID:           1,
		Code:         "IF2110",
		EmbeddingURL: "if2110",
		Thresholds: datatypes.NewJSONType(map[string][]float64{
			"3": {50, 70, 90},
		}),
	}
}

func fixtureQuestions() []models.Question {
	return []models.Question{
		{
			ID:              11,
			AssessmentID:    1,
			Type:            models.QuestionTypeMCQ,
			TotalMarks:      2,
			AcceptedAnswers: datatypes.NewJSONSlice([][]string{{"Paris"}}),
		},
		{
			ID:              12,
			AssessmentID:    1,
			Type:            models.QuestionTypeFillInTheBlank,
			TotalMarks:      1,
			AcceptedAnswers: datatypes.NewJSONSlice([][]string{{"42"}}),
		},
		{
			ID:            13,
			AssessmentID:  1,
			Type:          models.QuestionTypeDescriptive,
			TotalMarks:    3,
			MarkingScheme: "explain tail recursion",
		},
	}
}

func fixtureAssessment(manual bool) models.Assessment {
	return models.Assessment{
		ID:                 1,
		ClassID:            1,
		Name:               "Midterm Exam",
		DueDate:            time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC),
		TotalMarks:         6,
		AllowManualGrading: manual,
		Class:              models.Class{ID: 1, CourseCode: "IF2110"},
		Questions:          fixtureQuestions(),
	}
}

func fixtureSolution() models.Solution {
	questions := fixtureQuestions()

	return models.Solution{
		ID:           21,
		AssessmentID: 1,
		StudentID:    31,
		Status:       models.SolutionStatusUngraded,
		Student:      models.Student{ID: 31, Name: "Dira", Email: "dira@student.test"},
		Answers: []models.StudentAnswer{
			{ID: 41, SolutionID: 21, QuestionID: 11, Position: 0, Answer: "paris", Question: questions[0]},
			{ID: 42, SolutionID: 21, QuestionID: 12, Position: 1, Answer: "41", Question: questions[1]},
			{ID: 43, SolutionID: 21, QuestionID: 13, Position: 2, Answer: "a thorough explanation", Question: questions[2]},
		},
	}
}
