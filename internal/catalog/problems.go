package catalog

func single(animals ...string) [][]string {
	out := make([][]string, len(animals))
	for i, a := range animals {
		out[i] = []string{a}
	}
	return out
}

func group(animals ...string) []string {
	return animals
}

func box(label string, animals ...string) SectionSpec {
	return SectionSpec{Label: label, Items: [][]string{animals}}
}

func questionBox(animals ...string) SectionSpec {
	return SectionSpec{Label: "Question Box", Items: single(animals...)}
}

var defaultProblems = []ProblemSpec{
	// Anomaly
	{
		Type: "Anomaly", Label: "Sample",
		Choices: single("sheep small yellow", "pig medium yellow", "dog large yellow", "cat small yellow striped"),
		Correct: 3,
	},
	{
		Type: "Anomaly", Label: "Question 1",
		Choices: single("cat small red", "pig small red striped", "sheep small green striped", "cow small red"),
		Correct: 2,
	},
	{
		Type: "Anomaly", Label: "Question 2",
		Choices: single("dog small green striped", "cow small green striped", "pig large green striped", "dog large green", "cow large green"),
		Correct: 2,
	},
	{
		Type: "Anomaly", Label: "Question 3",
		Choices: single("pig large blue", "cow large blue", "cat medium green striped", "dog medium green striped", "dog medium green"),
		Correct: 4,
	},
	{
		Type: "Anomaly", Label: "Question 4",
		Choices: single("cat small red striped", "cat large green striped", "cat large blue", "cat small blue striped", "cat large red striped"),
		Correct: 2,
	},
	{
		Type: "Anomaly", Label: "Question 5",
		Choices: single("sheep small yellow striped", "sheep large green striped", "sheep small blue", "sheep large yellow striped", "sheep large blue striped"),
		Correct: 2,
	},
	{
		Type: "Anomaly", Label: "Question 6",
		Choices: single("dog large red", "horse large red", "dog large red striped", "horse small red", "dog small red striped"),
		Correct: 0,
	},

	// Analogy
	{
		Type: "Analogy", Label: "Sample",
		Choices: single("sheep medium yellow", "sheep large green", "sheep small yellow", "pig medium green"),
		Fixed:   []SectionSpec{questionBox("pig large green", "pig small green", "sheep large yellow")},
		Correct: 2,
	},
	{
		Type: "Analogy", Label: "Question 1",
		Choices: single("sheep medium green", "sheep medium blue striped", "pig medium blue striped", "pig small green"),
		Fixed:   []SectionSpec{questionBox("pig large green", "pig medium green", "pig large blue striped")},
		Correct: 2,
	},
	{
		Type: "Analogy", Label: "Question 2",
		Choices: single("sheep small blue", "sheep medium yellow", "cow large blue", "sheep small yellow"),
		Fixed:   []SectionSpec{questionBox("cat large yellow", "cat medium yellow", "sheep large yellow")},
		Correct: 1,
	},
	{
		Type: "Analogy", Label: "Question 3",
		Choices: single("sheep small blue", "cow small green", "dog large blue", "cow small yellow"),
		Fixed:   []SectionSpec{questionBox("sheep large green", "cow large yellow", "sheep small green")},
		Correct: 3,
	},
	{
		Type: "Analogy", Label: "Question 4",
		Choices: single("cat small blue", "sheep small red", "sheep small blue", "sheep small blue striped"),
		Fixed:   []SectionSpec{questionBox("cat large red", "sheep large blue", "cat small red")},
		Correct: 2,
	},
	{
		Type: "Analogy", Label: "Question 5",
		Choices: single("cow large blue", "sheep medium yellow", "dog small blue", "dog large yellow"),
		Fixed:   []SectionSpec{questionBox("sheep large red", "cat large green", "cow large red")},
		Correct: 3,
	},
	{
		Type: "Analogy", Label: "Question 6",
		Choices: single("dog small green", "dog small yellow", "cat medium blue", "sheep large red"),
		Fixed:   []SectionSpec{questionBox("dog large blue", "sheep small red", "pig large yellow")},
		Correct: 0,
	},

	// Antithesis
	{
		Type: "Antithesis", Label: "Sample",
		Choices: single("cat medium green", "pig medium red", "cow medium green", "dog medium green"),
		Fixed:   []SectionSpec{box("Box 1", "dog small green"), box("Box 3", "dog large green")},
		Correct: 3,
	},
	{
		Type: "Antithesis", Label: "Question 1",
		Choices: single("cat large blue", "cat medium green", "dog medium red", "cat small yellow", "sheep medium green"),
		Fixed:   []SectionSpec{box("Box 1", "cat large yellow"), box("Box 3", "cat small blue")},
		Correct: 1,
	},
	{
		Type: "Antithesis", Label: "Question 2",
		Choices: [][]string{
			group("cow medium yellow", "dog medium green"),
			group("pig medium green", "cow medium yellow"),
			group("dog medium yellow", "sheep small blue"),
			group("sheep medium yellow", "dog medium green"),
		},
		Fixed:   []SectionSpec{box("Box 1", "cow large yellow", "dog large green"), box("Box 3", "cow small yellow", "dog small green")},
		Correct: 0,
	},
	{
		Type: "Antithesis", Label: "Question 3",
		Choices: [][]string{
			group("sheep medium red", "cow medium red"),
			group("pig large green", "pig large red"),
			group("cow medium green", "sheep medium green"),
			group("sheep medium green"),
		},
		Fixed:   []SectionSpec{box("Box 1", "cow small green"), box("Box 3", "cow large green", "sheep large green", "pig large green")},
		Correct: 2,
	},
	{
		Type: "Antithesis", Label: "Question 4",
		Choices: [][]string{
			group("dog small blue"),
			group("cat small yellow", "pig small yellow"),
			group("sheep medium green", "dog medium green"),
			group("cow large yellow"),
		},
		Fixed:   []SectionSpec{box("Box 1", "sheep small red"), box("Box 3", "cow large blue", "sheep large blue", "dog large blue")},
		Correct: 2,
	},
	{
		Type: "Antithesis", Label: "Question 5",
		Choices: [][]string{
			group("dog small blue", "sheep small blue"),
			group("dog large red"),
			group("dog small red", "dog medium yellow"),
			group("dog small red", "dog small yellow", "sheep medium blue"),
		},
		Fixed:   []SectionSpec{box("Box 1", "dog small yellow"), box("Box 3", "dog small blue", "dog medium red", "dog large yellow")},
		Correct: 2,
	},
	{
		Type: "Antithesis", Label: "Question 6",
		Choices: [][]string{
			group("horse medium red", "cat medium blue"),
			group("cow medium red", "dog medium red"),
			group("cat medium red"),
			group("dog medium blue", "pig medium blue", "cow medium blue"),
		},
		Fixed:   []SectionSpec{box("Box 1", "horse medium red"), box("Box 3", "cat medium red", "sheep medium red", "pig medium red")},
		Correct: 1,
	},

	// Antinomy
	{
		Type: "Antinomy", Label: "Sample",
		Choices: single("sheep large blue", "sheep medium green", "sheep small green", "dog small red"),
		Fixed: []SectionSpec{
			box("Green Box", "cat medium green", "cow medium green", "pig medium green"),
			box("Red Box", "cat large yellow", "cow large yellow", "pig large yellow"),
		},
		Correct: 1,
	},
	{
		Type: "Antinomy", Label: "Question 1",
		Choices: single("pig large red", "pig large blue", "sheep medium blue", "cat medium yellow"),
		Fixed: []SectionSpec{
			box("Green Box", "sheep large blue", "cat large blue", "cow large blue"),
			box("Red Box", "sheep large yellow", "dog large yellow", "cow large yellow"),
		},
		Correct: 1,
	},
	{
		Type: "Antinomy", Label: "Question 2",
		Choices: single("cow large blue striped", "pig large red striped", "sheep large red", "pig medium green"),
		Fixed: []SectionSpec{
			box("Green Box", "cow large red striped", "cat large red striped", "sheep large red striped"),
			box("Red Box", "cow large red", "cat large red", "sheep large red"),
		},
		Correct: 1,
	},
	{
		Type: "Antinomy", Label: "Question 3",
		Choices: single("dog small green striped", "dog large green", "dog medium red", "dog small green"),
		Fixed: []SectionSpec{
			box("Green Box", "dog small blue", "dog small yellow", "dog small red"),
			box("Red Box", "dog large blue", "dog large red", "dog large yellow"),
		},
		Correct: 0,
	},
	{
		Type: "Antinomy", Label: "Question 4",
		Choices: single("sheep medium blue", "pig medium red striped", "cow small yellow", "sheep medium green", "dog large green striped"),
		Fixed: []SectionSpec{
			box("Green Box", "cat medium blue striped", "sheep medium yellow striped", "horse medium green striped"),
			box("Red Box", "pig large blue", "dog large red", "horse large yellow"),
		},
		Correct: 1,
	},
	{
		Type: "Antinomy", Label: "Question 5",
		Choices: single("sheep small red", "cow large green", "sheep small yellow", "sheep medium red"),
		Fixed: []SectionSpec{
			box("Green Box", "cat small green", "sheep small blue", "pig small yellow"),
			box("Red Box", "cow medium red", "cat medium blue", "sheep medium yellow"),
		},
		Correct: 0,
	},
	{
		Type: "Antinomy", Label: "Question 6",
		Choices: single("cow small green striped", "sheep small blue", "horse small yellow", "horse small yellow striped"),
		Fixed: []SectionSpec{
			box("Green Box", "sheep small green striped", "cow small blue striped", "cat small red striped"),
			box("Red Box", "sheep small green", "cow small blue", "cat small red"),
		},
		Correct: 3,
	},
}
