// Where: internal/infra/installer/apt.go
// What: Vendor package channel setup on Debian-family hosts.
// Why: Install the engine and its plugins from the vendor's apt repository.
package installer

import (
	"context"
	"fmt"
	"os"
	"strings"
)

const (
	vendorBaseURL  = "https://download.docker.com/linux"
	keyringPath    = "/etc/apt/keyrings/docker.asc"
	sourceListPath = "/etc/apt/sources.list.d/docker.list"
)

// Packages that ship an incompatible engine and must go before installing
// the vendor channel.
var legacyPackages = []string{
	"docker.io", "docker-doc", "docker-compose", "podman-docker", "containerd", "runc",
}

var enginePackages = []string{
	"docker-ce", "docker-ce-cli", "containerd.io", "docker-buildx-plugin", "docker-compose-plugin",
}

// installPackages runs the vendor's documented apt flow: drop legacy
// packages, register the signing key and package source, then install the
// engine with its buildx and compose plugins.
func (i *Installer) installPackages(ctx context.Context) error {
	distro, codename, err := i.detectDistro()
	if err != nil {
		return err
	}

	for _, pkg := range legacyPackages {
		// Absent packages are fine; apt reports them as not installed.
		_ = i.Runner.RunQuiet(ctx, "", "sudo", "apt-get", "remove", "-y", pkg)
	}

	steps := [][]string{
		{"sudo", "apt-get", "update"},
		{"sudo", "apt-get", "install", "-y", "ca-certificates", "curl"},
		{"sudo", "install", "-m", "0755", "-d", "/etc/apt/keyrings"},
		{"sudo", "curl", "-fsSL", fmt.Sprintf("%s/%s/gpg", vendorBaseURL, distro), "-o", keyringPath},
		{"sudo", "chmod", "a+r", keyringPath},
	}
	for _, step := range steps {
		if err := i.Runner.Run(ctx, "", step[0], step[1:]...); err != nil {
			return fmt.Errorf("prepare package source: %w", err)
		}
	}

	arch, err := i.Runner.RunOutput(ctx, "", "dpkg", "--print-architecture")
	if err != nil {
		return fmt.Errorf("detect architecture: %w", err)
	}
	sourceLine := fmt.Sprintf("deb [arch=%s signed-by=%s] %s/%s %s stable",
		strings.TrimSpace(string(arch)), keyringPath, vendorBaseURL, distro, codename)
	if err := i.Runner.Run(ctx, "", "sudo", "sh", "-c",
		fmt.Sprintf("echo '%s' > %s", sourceLine, sourceListPath)); err != nil {
		return fmt.Errorf("register package source: %w", err)
	}

	if err := i.Runner.Run(ctx, "", "sudo", "apt-get", "update"); err != nil {
		return fmt.Errorf("refresh package index: %w", err)
	}
	installArgs := append([]string{"apt-get", "install", "-y"}, enginePackages...)
	if err := i.Runner.Run(ctx, "", "sudo", installArgs...); err != nil {
		return fmt.Errorf("install engine packages: %w", err)
	}
	i.Log.Success("engine packages installed")
	return nil
}

// detectDistro reads /etc/os-release and returns the vendor channel name
// and release codename. Only Debian-family hosts are supported.
func (i *Installer) detectDistro() (distro, codename string, err error) {
	payload, err := os.ReadFile(i.OSReleasePath)
	if err != nil {
		return "", "", fmt.Errorf("read os-release: %w", err)
	}
	values := map[string]string{}
	for _, line := range strings.Split(string(payload), "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		values[key] = strings.Trim(val, `"`)
	}

	id := values["ID"]
	switch {
	case id == "ubuntu" || id == "debian":
		distro = id
	case strings.Contains(values["ID_LIKE"], "ubuntu"):
		distro = "ubuntu"
	case strings.Contains(values["ID_LIKE"], "debian"):
		distro = "debian"
	default:
		return "", "", fmt.Errorf("unsupported distribution %q: only Debian-family hosts are supported", id)
	}

	codename = values["VERSION_CODENAME"]
	if codename == "" {
		codename = values["UBUNTU_CODENAME"]
	}
	if codename == "" {
		return "", "", fmt.Errorf("os-release is missing a release codename")
	}
	return distro, codename, nil
}
