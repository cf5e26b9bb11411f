package models

import "cashlytic-server/src/apperr"

// Category is the closed set of transaction categories. The receipt scanner
// only proposes expense categories.
type Category string

const (
	CategoryHousing        Category = "housing"
	CategoryTransportation Category = "transportation"
	CategoryGroceries      Category = "groceries"
	CategoryUtilities      Category = "utilities"
	CategoryEntertainment  Category = "entertainment"
	CategoryFood           Category = "food"
	CategoryShopping       Category = "shopping"
	CategoryHealthcare     Category = "healthcare"
	CategoryEducation      Category = "education"
	CategoryPersonal       Category = "personal"
	CategoryTravel         Category = "travel"
	CategoryInsurance      Category = "insurance"
	CategoryGifts          Category = "gifts"
	CategoryBills          Category = "bills"
	CategoryOtherExpense   Category = "other-expense"

	CategorySalary      Category = "salary"
	CategoryFreelance   Category = "freelance"
	CategoryInvestments Category = "investments"
	CategoryBusiness    Category = "business"
	CategoryRental      Category = "rental"
	CategoryOtherIncome Category = "other-income"
)

var ExpenseCategories = []Category{
	CategoryHousing,
	CategoryTransportation,
	CategoryGroceries,
	CategoryUtilities,
	CategoryEntertainment,
	CategoryFood,
	CategoryShopping,
	CategoryHealthcare,
	CategoryEducation,
	CategoryPersonal,
	CategoryTravel,
	CategoryInsurance,
	CategoryGifts,
	CategoryBills,
	CategoryOtherExpense,
}

var IncomeCategories = []Category{
	CategorySalary,
	CategoryFreelance,
	CategoryInvestments,
	CategoryBusiness,
	CategoryRental,
	CategoryOtherIncome,
}

var knownCategories = func() map[Category]bool {
	m := make(map[Category]bool, len(ExpenseCategories)+len(IncomeCategories))
	for _, c := range ExpenseCategories {
		m[c] = true
	}
	for _, c := range IncomeCategories {
		m[c] = true
	}
	return m
}()

func (c Category) IsValid() bool {
	return knownCategories[c]
}

func (c Category) IsExpense() bool {
	for _, e := range ExpenseCategories {
		if e == c {
			return true
		}
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", apperr.Validation("invalid category %q", s)
	}
	return c, nil
}

// ExpenseCategoryNames returns the expense categories as plain strings, in
// declaration order.
func ExpenseCategoryNames() []string {
	names := make([]string, len(ExpenseCategories))
	for i, c := range ExpenseCategories {
		names[i] = string(c)
	}
	return names
}
