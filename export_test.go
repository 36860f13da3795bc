package main

import (
	"errors"
	"testing"
	"time"

	"ledger/models"

	"github.com/stretchr/testify/assert"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteStatementsCSVReportsWriteErrors(t *testing.T) {
	rows := []models.Statement{{ID: 1, Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Name: "Lunch", Amount: 9.5, Category: "Food"}}
	err := writeStatementsCSV(failingWriter{}, rows)
	assert.EqualError(t, err, "disk full")
}

func TestSafeCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Lunch", "Lunch"},
		{"", ""},
		{"=1+1", "'=1+1"},
		{"+31 600", "'+31 600"},
		{"-refund", "'-refund"},
		{"@SUM(A1)", "'@SUM(A1)"},
		{"\tx", "'\tx"},
		{"a=b", "a=b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeCell(tt.in), tt.in)
	}
}
