// # cmd/courseplan/shell.go
package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"courseplan/internal/core/errors"
)

const (
	msgWelcome     = "Welcome to the course planner."
	msgGoodbye     = "Thank you for using the course planner!"
	msgSchedule    = "Here is a sample schedule:"
	msgLoaded      = "Data loaded successfully."
	msgLoadFirst   = "Please load the courses first (option 1)."
	msgFileMissing = "Error: File not found"
)

// RunShell drives the line-oriented menu. Queries are disabled until a
// load succeeds; nothing here is fatal, every path returns to the menu.
func (a *App) RunShell(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, msgWelcome)
	fmt.Fprintln(out)

	for {
		fmt.Fprintln(out, "1. Load Data Structure.")
		fmt.Fprintln(out, "2. Print Course List.")
		fmt.Fprintln(out, "3. Print Course.")
		fmt.Fprintln(out, "9. Exit")
		fmt.Fprint(out, "What would you like to do? ")

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())

		// No exceptions for menu parsing: unparseable input is just an
		// unrecognized choice.
		choice, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(out, "%s is not a valid option.\n\n", input)
			continue
		}

		switch choice {
		case 1:
			fmt.Fprint(out, "Enter file name: ")
			if !scanner.Scan() {
				fmt.Fprintln(out)
				return scanner.Err()
			}
			name := strings.TrimSpace(scanner.Text())

			_, err = a.LoadCatalog(name)
			if err != nil {
				if errors.IsCode(err, errors.CodeSourceNotFound) {
					fmt.Fprintln(out, msgFileMissing)
				} else {
					fmt.Fprintf(out, "Error: %v\n", err)
				}
				fmt.Fprintln(out)
				continue
			}
			fmt.Fprintf(out, "%s\n\n", msgLoaded)

		case 2:
			if !a.Loaded() {
				fmt.Fprintf(out, "%s\n\n", msgLoadFirst)
				continue
			}
			listing, err := a.ListCourses("")
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n\n", err)
				continue
			}
			fmt.Fprintln(out, msgSchedule)
			fmt.Fprint(out, listing)
			fmt.Fprintln(out)

		case 3:
			if !a.Loaded() {
				fmt.Fprintf(out, "%s\n\n", msgLoadFirst)
				continue
			}
			fmt.Fprint(out, "What course do you want to know about? ")
			if !scanner.Scan() {
				fmt.Fprintln(out)
				return scanner.Err()
			}
			number := strings.TrimSpace(scanner.Text())

			detail, err := a.CourseDetail(number)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n\n", err)
				continue
			}
			fmt.Fprint(out, detail)
			fmt.Fprintln(out)

		case 9:
			fmt.Fprintln(out, msgGoodbye)
			return nil

		default:
			fmt.Fprintf(out, "%d is not a valid option.\n\n", choice)
		}
	}
}
