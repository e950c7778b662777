package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
)

func TestMarkStudentCourseIdempotent(t *testing.T) {
	env := newTestEnv(t)
	id := env.seed(t)

	env.mark(t, id, studentAddr)
	once, err := env.sm.Enrollment().GetCourseStudents(env.ctx, id)
	require.NoError(t, err)

	before := env.ledgerLength(t)
	env.mark(t, id, studentAddr)
	twice, err := env.sm.Enrollment().GetCourseStudents(env.ctx, id)
	require.NoError(t, err)

	assert.Equal(t, once.Students, twice.Students)
	assert.Equal(t, []models.Address{studentAddr}, twice.Students)
	assert.Equal(t, before+1, env.ledgerLength(t), "repeated mark is still recorded")
}

func TestMarkStudentCourseRejections(t *testing.T) {
	env := newTestEnv(t)
	id := env.seed(t)

	err := env.sm.Enrollment().MarkStudentCourse(env.ctx, teacherAddr, id, &MarkStudentRequest{Student: studentAddr.String()})
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = env.sm.Enrollment().MarkStudentCourse(env.ctx, adminAddr, 9, &MarkStudentRequest{Student: studentAddr.String()})
	assert.ErrorIs(t, err, ErrCourseNotFound)

	err = env.sm.Enrollment().MarkStudentCourse(env.ctx, adminAddr, id, &MarkStudentRequest{Student: "not an address"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMarkBeforeRegistration(t *testing.T) {
	env := newTestEnv(t)
	id := env.seed(t)

	env.mark(t, id, "0xNEWCOMER")
	roster, err := env.sm.Enrollment().GetCourseStudents(env.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []models.Address{"0xnewcomer"}, roster.Students, "addresses are normalized")

	env.register(t, "0xnewcomer", "S100", "student")
	taken, err := env.sm.Enrollment().GetStudentTakenCourses(env.ctx, "0xnewcomer")
	require.NoError(t, err)
	require.Len(t, taken, 1)
	assert.Equal(t, id, taken[0].ID)
}

func TestCourseStudentsOrder(t *testing.T) {
	env := newTestEnv(t)
	id := env.seed(t)

	env.mark(t, id, student2Addr)
	env.mark(t, id, studentAddr)

	roster, err := env.sm.Enrollment().GetCourseStudents(env.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []models.Address{student2Addr, studentAddr}, roster.Students)

	_, err = env.sm.Enrollment().GetCourseStudents(env.ctx, 5)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestGetStudentTakenCourses(t *testing.T) {
	env := newTestEnv(t)
	math := env.seed(t)
	art := env.addCourse(t, "Art", 2, teacherAddr)
	env.addCourse(t, "Music", 1, teacherAddr)

	env.mark(t, art, studentAddr)
	env.mark(t, math, studentAddr)

	taken, err := env.sm.Enrollment().GetStudentTakenCourses(env.ctx, studentAddr)
	require.NoError(t, err)
	require.Len(t, taken, 2)
	assert.Equal(t, math, taken[0].ID, "ordered by course id")
	assert.Equal(t, art, taken[1].ID)

	_, err = env.sm.Enrollment().GetStudentTakenCourses(env.ctx, teacherAddr)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = env.sm.Enrollment().GetStudentTakenCourses(env.ctx, strangerAddr)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
