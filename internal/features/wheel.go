package features

import (
	"strconv"
	"strings"
)

// Notes lists the twelve chromatic pitch classes in semitone order from C.
var Notes = []string{
	"C", "C#", "D", "D#", "E", "F",
	"F#", "G", "G#", "A", "A#", "B",
}

// Wheel notation places each key on a circle of twelve positions. Adjacent
// positions and the same position in the other mode (letter) are harmonically
// compatible. Major keys carry the letter B, minor keys the letter A.
var wheelMajor = map[string]string{
	"C": "8B", "G": "9B", "D": "10B", "A": "11B", "E": "12B",
	"B": "1B", "F#": "2B", "C#": "3B", "G#": "4B",
	"D#": "5B", "A#": "6B", "F": "7B",
}

var wheelMinor = map[string]string{
	"A": "8A", "E": "9A", "B": "10A", "F#": "11A", "C#": "12A",
	"G#": "1A", "D#": "2A", "A#": "3A",
	"F": "4A", "C": "5A", "G": "6A", "D": "7A",
}

// KeyName renders a pitch-class index and mode as a display key, e.g. "A minor".
func KeyName(pitchClass int, major bool) string {
	note := Notes[((pitchClass%12)+12)%12]
	if major {
		return note + " major"
	}
	return note + " minor"
}

// WheelNotation maps a pitch-class index and mode onto the wheel code.
func WheelNotation(pitchClass int, major bool) string {
	note := Notes[((pitchClass%12)+12)%12]
	if major {
		return wheelMajor[note]
	}
	return wheelMinor[note]
}

// ValidNotation reports whether value matches the wheel pattern {1-12}{A|B}.
func ValidNotation(value string) bool {
	if len(value) < 2 {
		return false
	}
	letter := value[len(value)-1]
	if letter != 'A' && letter != 'B' {
		return false
	}
	position, err := strconv.Atoi(strings.TrimSuffix(value, string(letter)))
	if err != nil {
		return false
	}
	return position >= 1 && position <= 12
}
