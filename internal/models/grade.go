package models

import "fmt"

// Grade is a school grade label, "6" through "12".
type Grade string

var Grades = []Grade{"6", "7", "8", "9", "10", "11", "12"}

func (g Grade) Valid() bool {
	for _, grade := range Grades {
		if grade == g {
			return true
		}
	}
	return false
}

func (g Grade) String() string {
	return string(g)
}

func ParseGrade(raw string) (Grade, error) {
	g := Grade(raw)
	if !g.Valid() {
		return "", fmt.Errorf("unknown grade %q", raw)
	}
	return g, nil
}
