package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"
)

// JUnit XML schema types, so batch solves can be reported by CI systems.

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one batch.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one problem.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure marks a problem without a feasible solution.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError marks a problem whose run failed.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts reports to JUnit XML. Infeasible problems are
// failures and failed runs are errors.
func ConvertToJUnit(reports []*Report) *JUnitTestSuites {
	suite := JUnitTestSuite{
		Name:  "knapsack",
		Tests: len(reports),
	}

	var totalMs int64
	var start time.Time
	for _, r := range reports {
		tc := JUnitTestCase{
			Name:      r.Problem,
			Classname: r.Solver,
			Time:      float64(r.ElapsedMs) / 1000.0,
		}
		switch r.Status {
		case StatusInfeasible:
			suite.Failures++
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%s: no feasible solution", r.Problem),
				Type:    "NoFeasibleSolution",
				Body:    fmt.Sprintf("%d samples, none within capacity %s\n", r.Stats.Samples, formatNumber(r.Capacity)),
			}
		case StatusError:
			suite.Errors++
			tc.Error = &JUnitError{Message: r.Error, Type: "SolveError"}
		}
		if r.Selection != nil {
			suite.Properties = append(suite.Properties, JUnitProperty{
				Name:  r.Problem + ".cost",
				Value: formatNumber(r.Selection.TotalCost),
			})
		}
		suite.TestCases = append(suite.TestCases, tc)

		totalMs += r.ElapsedMs
		if start.IsZero() || r.Timestamp.Before(start) {
			start = r.Timestamp
		}
	}
	suite.Time = float64(totalMs) / 1000.0
	if !start.IsZero() {
		suite.Timestamp = start.Format(time.RFC3339)
	}

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		Time:       suite.Time,
		TestSuites: []JUnitTestSuite{suite},
	}
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(reports []*Report, path string) error {
	data, err := xml.MarshalIndent(ConvertToJUnit(reports), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
