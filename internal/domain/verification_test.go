package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateRows(t *testing.T) {
	tests := []struct {
		name      string
		rows      []Row
		errorType error
	}{
		{
			name: "balanced two rows",
			rows: []Row{
				{AccountCode: "5410", Debit: decimal.NewFromInt(100)},
				{AccountCode: "1930", Credit: decimal.NewFromInt(100)},
			},
		},
		{
			name: "balanced split credit",
			rows: []Row{
				{AccountCode: "1930", Debit: decimal.NewFromInt(125)},
				{AccountCode: "3001", Credit: decimal.NewFromInt(100)},
				{AccountCode: "2610", Credit: decimal.NewFromInt(25)},
			},
		},
		{
			name:      "no rows",
			rows:      nil,
			errorType: ErrEmptyRows,
		},
		{
			name: "unbalanced",
			rows: []Row{
				{AccountCode: "5410", Debit: decimal.NewFromInt(100)},
				{AccountCode: "1930", Credit: decimal.NewFromInt(99)},
			},
			errorType: ErrUnbalancedRows,
		},
		{
			name: "off by one öre",
			rows: []Row{
				{AccountCode: "5410", Debit: decimal.RequireFromString("100.01")},
				{AccountCode: "1930", Credit: decimal.RequireFromString("100.00")},
			},
			errorType: ErrUnbalancedRows,
		},
		{
			name: "sub-öre drift balances after rounding",
			rows: []Row{
				{AccountCode: "5410", Debit: decimal.RequireFromString("100.001")},
				{AccountCode: "1930", Credit: decimal.RequireFromString("100.002")},
			},
		},
		{
			name: "both sides set",
			rows: []Row{
				{AccountCode: "5410", Debit: decimal.NewFromInt(100), Credit: decimal.NewFromInt(100)},
			},
			errorType: ErrRowAmountConflict,
		},
		{
			name: "neither side set",
			rows: []Row{
				{AccountCode: "5410"},
				{AccountCode: "1930"},
			},
			errorType: ErrRowAmountConflict,
		},
		{
			name: "negative debit",
			rows: []Row{
				{AccountCode: "5410", Debit: decimal.NewFromInt(-100)},
				{AccountCode: "1930", Credit: decimal.NewFromInt(-100)},
			},
			errorType: ErrNegativeRowAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRows(tt.rows)

			if tt.errorType == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.errorType) {
				t.Errorf("expected %v, got %v", tt.errorType, err)
			}
		})
	}
}

func TestRow_Reversed(t *testing.T) {
	row := Row{AccountCode: "5410", Debit: decimal.NewFromInt(100), Description: "Hyra"}

	reversed := row.Reversed()

	if !reversed.Credit.Equal(decimal.NewFromInt(100)) || !reversed.Debit.IsZero() {
		t.Errorf("expected sides swapped, got debit %s credit %s", reversed.Debit, reversed.Credit)
	}
	if reversed.AccountCode != "5410" || reversed.Description != "Hyra" {
		t.Error("account and description must carry over")
	}
}

func TestCategoryForCode(t *testing.T) {
	tests := []struct {
		code string
		want AccountCategory
	}{
		{"1930", CategoryAsset},
		{"2099", CategoryEquity},
		{"2010", CategoryEquity},
		{"2440", CategoryLiability},
		{"2990", CategoryLiability},
		{"3001", CategoryIncome},
		{"5410", CategoryExpense},
		{"7210", CategoryExpense},
		{"8310", CategoryIncome},
		{"8423", CategoryExpense},
		{"8910", CategoryExpense},
		{"8999", CategoryExpense},
	}

	for _, tt := range tests {
		if got := CategoryForCode(tt.code); got != tt.want {
			t.Errorf("CategoryForCode(%s) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestValidAccountCode(t *testing.T) {
	valid := []string{"1000", "1930", "8999"}
	invalid := []string{"", "193", "19300", "0930", "9100", "19a0"}

	for _, code := range valid {
		if !ValidAccountCode(code) {
			t.Errorf("expected %q to be valid", code)
		}
	}
	for _, code := range invalid {
		if ValidAccountCode(code) {
			t.Errorf("expected %q to be invalid", code)
		}
	}
}
