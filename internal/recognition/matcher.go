package recognition

import "github.com/roach88/voicecmd/internal/command"

// matchTranscript runs one matching pass over cmds.
//
// subject is the (possibly normalized) text the patterns are tested against;
// raw is the transcript as the engine reported it, used for the no-match
// notification. Every (command, pattern) pair is tested in order and each
// match invokes the matched hook, then the callback.
//
// Returns the number of matches. A *ContractError aborts the pass; callbacks
// already invoked are not rolled back.
func matchTranscript(cmds []command.Command, subject, raw string, hooks Hooks) (int, error) {
	matched := 0

	for _, cmd := range cmds {
		for _, re := range cmd.Patterns {
			if re == nil {
				continue
			}

			if !cmd.HasInput {
				if !re.MatchString(subject) {
					continue
				}
				matched++
				fire(cmd, nil, hooks)
				continue
			}

			loc := re.FindStringSubmatchIndex(subject)
			if loc == nil {
				continue
			}
			if !command.HasCaptureGroup(re) {
				return matched, &ContractError{
					Label:      cmd.Label,
					Pattern:    re.String(),
					Transcript: raw,
				}
			}
			matched++
			fire(cmd, extractInput(subject, loc), hooks)
		}
	}

	if matched == 0 {
		hooks.noMatch(raw)
	}
	return matched, nil
}

// extractInput returns the first capture group located by loc, or nil when
// the group did not participate in the match.
func extractInput(subject string, loc []int) *string {
	if len(loc) < 4 || loc[2] < 0 {
		return nil
	}
	input := subject[loc[2]:loc[3]]
	return &input
}

func fire(cmd command.Command, input *string, hooks Hooks) {
	hooks.matched(cmd, input)
	if cmd.Callback != nil {
		cmd.Callback(input)
	}
}
