package provision

// Tool describes one provisionable CLI tool: where its vendor installer
// archive lives, what the installer expects on its command line, and
// which files the tool leaves on the host. The orchestration logic in
// Apply is shared; everything tool-specific lives here.
type Tool struct {
	// Name is the identifier used on the command line and in manifests.
	Name string

	// DisplayName is the human-readable name used in result messages.
	DisplayName string

	// Executable is the binary the tool places in the bin directory.
	// Its presence there is the installed/absent signal.
	Executable string

	// Companions are extra files the installer drops next to the
	// executable, removed along with it on uninstall.
	Companions []string

	// InstallerPath is the location of the installer script relative
	// to the extracted archive directory.
	InstallerPath string

	// PassInstallDirs controls whether the installer receives explicit
	// --bin-dir/--install-dir arguments or infers the locations itself.
	PassInstallDirs bool

	DefaultURL        string
	DefaultFileName   string
	DefaultInstallDir string
}

// InstallerArgs builds the argument list for the vendor installer
// according to the tool's conventions.
func (t Tool) InstallerArgs(binDir, installDir string, update bool) []string {
	var args []string
	if t.PassInstallDirs {
		args = append(args, "--bin-dir", binDir, "--install-dir", installDir)
	}
	if update {
		args = append(args, "--update")
	}
	return args
}

// AWSCLI describes the AWS CLI v2 bundled installer. The archive
// extracts to an `aws` directory containing the install script, and the
// installer wants to be told where to place things.
var AWSCLI = Tool{
	Name:              "awscli",
	DisplayName:       "aws cli",
	Executable:        "aws",
	Companions:        []string{"aws_completer"},
	InstallerPath:     "aws/install",
	PassInstallDirs:   true,
	DefaultURL:        "https://awscli.amazonaws.com/awscli-exe-linux-x86_64.zip",
	DefaultFileName:   "awscli-exe-linux-x86_64.zip",
	DefaultInstallDir: "/usr/local/aws-cli",
}

// SAMCLI describes the AWS SAM CLI installer. Its install script sits
// at the top of the extracted archive and picks its own directories.
var SAMCLI = Tool{
	Name:              "samcli",
	DisplayName:       "aws sam cli",
	Executable:        "sam",
	InstallerPath:     "install",
	DefaultURL:        "https://github.com/aws/aws-sam-cli/releases/latest/download/aws-sam-cli-linux-x86_64.zip",
	DefaultFileName:   "aws-sam-cli-linux-x86_64.zip",
	DefaultInstallDir: "/usr/local/aws-sam-cli",
}

// DefaultBinDir is where both tools place their executables unless
// overridden.
const DefaultBinDir = "/usr/local/bin"

// Tools lists every tool this provisioner knows how to manage.
var Tools = []Tool{AWSCLI, SAMCLI}

// Lookup resolves a tool name from a manifest or the command line to
// its descriptor.
func Lookup(name string) (Tool, bool) {
	for _, t := range Tools {
		if t.Name == name || t.Executable == name {
			return t, true
		}
	}
	return Tool{}, false
}
