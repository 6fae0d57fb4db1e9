package summarize

import "fmt"

func buildPrompt(mode, text string) string {
	switch mode {
	case ModeTeaching:
		return teachingPrompt(text)
	case ModeKeyFindings:
		return keyFindingsPrompt(text)
	case ModeDetailed:
		return detailedPrompt(text)
	default:
		return concisePrompt(text)
	}
}

func concisePrompt(text string) string {
	return fmt.Sprintf(`Analyze this pharmaceutical research paper excerpt and provide a concise technical summary.

Research Text:
%s

Format your response as:
# Summary: [Paper Title]

## Key Findings
- [3-5 bullet points of main results]

## Methodology
- [Brief description of methods used]

## Significance
- [Why this research matters]
`, text)
}

func detailedPrompt(text string) string {
	return fmt.Sprintf(`Provide a thorough technical analysis of this pharmaceutical research paper excerpt.

Research Text:
%s

Format your response as:
# Detailed Analysis: [Paper Title]

## Background and Objectives
[Context and stated goals]

## Methodology
[Experimental design, instruments, conditions, sample sizes]

## Results
[All quantitative results with their reported uncertainty]

## Limitations
[Weaknesses, confounders, missing controls]

## Significance
[Where this fits in the wider literature]
`, text)
}

func teachingPrompt(text string) string {
	return fmt.Sprintf(`Convert this pharmaceutical research into a student-friendly summary suitable for undergraduate chemistry students.

Research Text:
%s

Format your response as:
# Student-Friendly Summary

## What The Scientists Did
[Simple explanation in plain English]

## Why This Matters
- [Practical implications]
- [Real-world benefits]

## Simple Chemistry Explanation
[Break down complex concepts with analogies]

## Real-World Impact
[How this affects people's lives]
`, text)
}

func keyFindingsPrompt(text string) string {
	return fmt.Sprintf(`Extract the key findings and technical details from this pharmaceutical research.

Research Text:
%s

Format as:
## Key Research Findings

### Main Results
1. [Numbered list of results]

### Technical Details
- [Specific parameters, conditions, measurements]

### Industrial Implications
- [Business and commercial impact]
`, text)
}
