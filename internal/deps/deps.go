package deps

import (
	"os/exec"
	"strings"
)

// Status represents the installation status of a dependency
type Status struct {
	Name      string
	Installed bool
	Path      string
	Version   string
	Required  bool
}

// Check looks binary up in PATH and asks it for a version string
func Check(name, binary, versionFlag string) Status {
	if binary == "" {
		binary = name
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return Status{Name: name, Installed: false}
	}

	status := Status{
		Name:      name,
		Installed: true,
		Path:      path,
	}

	if versionFlag == "" {
		return status
	}
	// CombinedOutput: some tools print their version on stderr
	output, err := exec.Command(path, versionFlag).CombinedOutput()
	if err == nil {
		lines := strings.Split(string(output), "\n")
		if len(lines) > 0 {
			status.Version = strings.TrimSpace(lines[0])
		}
	}

	return status
}

// CheckFFmpeg checks if ffmpeg is installed and returns its status
func CheckFFmpeg(binary string) Status {
	return Check("ffmpeg", binary, "-version")
}

// CheckSpleeter checks if spleeter is installed
func CheckSpleeter(binary string) Status {
	return Check("spleeter", binary, "--version")
}

// CheckDemucs checks if demucs is installed. demucs has no version flag.
func CheckDemucs(binary string) Status {
	return Check("demucs", binary, "")
}

// CheckWhisperCli checks if whisper-cli is installed and returns its status
func CheckWhisperCli() Status {
	return Check("whisper-cli", "whisper-cli", "--version")
}

// Options selects which tools a configuration needs
type Options struct {
	FFmpegBinary    string
	IsolationTool   string // "spleeter" or "demucs"
	IsolationBinary string
	NeedsWhisperCli bool
}

// CheckAll reports every external tool, marking the ones opts requires
func CheckAll(opts Options) []Status {
	ffmpeg := CheckFFmpeg(opts.FFmpegBinary)
	ffmpeg.Required = true

	spleeterBin, demucsBin := "", ""
	if opts.IsolationTool == "demucs" {
		demucsBin = opts.IsolationBinary
	} else {
		spleeterBin = opts.IsolationBinary
	}
	spleeter := CheckSpleeter(spleeterBin)
	spleeter.Required = opts.IsolationTool != "demucs"
	demucs := CheckDemucs(demucsBin)
	demucs.Required = opts.IsolationTool == "demucs"

	whisper := CheckWhisperCli()
	whisper.Required = opts.NeedsWhisperCli

	return []Status{ffmpeg, spleeter, demucs, whisper}
}

// MissingRequired returns the names of required tools that are not installed
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, s := range statuses {
		if s.Required && !s.Installed {
			missing = append(missing, s.Name)
		}
	}
	return missing
}
