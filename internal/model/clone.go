package model

// CloneStrings copies s. A nil slice stays nil.
func CloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// CloneCells copies a matrix grid row by row.
func CloneCells(cells [][]string) [][]string {
	if cells == nil {
		return nil
	}
	out := make([][]string, len(cells))
	for i, row := range cells {
		out[i] = CloneStrings(row)
	}
	return out
}

// CloneOption copies an option including every pointee.
func CloneOption(o QuizItemOption) QuizItemOption {
	c := o
	c.Title = CloneString(o.Title)
	c.Body = CloneString(o.Body)
	c.MessageAfterSubmissionWhenSelected = CloneString(o.MessageAfterSubmissionWhenSelected)
	c.AdditionalCorrectnessExplanationOnModelSolution = CloneString(o.AdditionalCorrectnessExplanationOnModelSolution)
	return c
}

// CloneOptions copies options with CloneOption.
func CloneOptions(options []QuizItemOption) []QuizItemOption {
	if options == nil {
		return nil
	}
	out := make([]QuizItemOption, len(options))
	for i, o := range options {
		out[i] = CloneOption(o)
	}
	return out
}

// CloneTimelineItems copies timeline items.
func CloneTimelineItems(items []TimelineItem) []TimelineItem {
	if items == nil {
		return nil
	}
	out := make([]TimelineItem, len(items))
	copy(out, items)
	return out
}

// CloneTimelineChoices copies timeline choices.
func CloneTimelineChoices(choices []TimelineChoice) []TimelineChoice {
	if choices == nil {
		return nil
	}
	out := make([]TimelineChoice, len(choices))
	copy(out, choices)
	return out
}

// CloneMessages copies the item messages.
func CloneMessages(m ItemMessages) ItemMessages {
	return ItemMessages{
		SuccessMessage:         CloneString(m.SuccessMessage),
		FailureMessage:         CloneString(m.FailureMessage),
		MessageOnModelSolution: CloneString(m.MessageOnModelSolution),
	}
}

// CloneText copies the item prompt.
func CloneText(t ItemText) ItemText {
	return ItemText{Title: CloneString(t.Title), Body: CloneString(t.Body)}
}
