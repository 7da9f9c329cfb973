package chef

import (
	"fmt"
	"strings"
)

const (
	installURL = "https://omnitruck.chef.io/install.sh"
	repoDir    = "~/chef-repo"
	knifeDir   = "~/.chef"
)

// Organization is the chef-server organization every cluster registers in.
const Organization = "inception"

// Commands renders commands for one cluster's configuration server.
type Commands struct {
	// Server is the hostname of the configuration server.
	Server string
	// User is the remote login on every node.
	User string
	// Password protects the chef-server admin account.
	Password string
	// StrictHostKeys makes knife verify node host keys during bootstrap.
	StrictHostKeys bool
}

// New returns a command builder for the given configuration server.
func New(server, user, password string) *Commands {
	return &Commands{Server: server, User: user, Password: password}
}

// InstallServer installs chef-server and the workstation tools on the
// configuration server.
func (c *Commands) InstallServer() string {
	return join(
		fmt.Sprintf("curl -fsSL %s | sudo bash -s -- -P chef-server", installURL),
		"sudo chef-server-ctl reconfigure --chef-license=accept",
		fmt.Sprintf("curl -fsSL %s | sudo bash -s -- -P chef-workstation", installURL),
	)
}

// ConfigureClient creates the admin user and organization and points knife at
// the local server.
func (c *Commands) ConfigureClient() string {
	key := knifeDir + "/" + c.User + ".pem"
	validator := knifeDir + "/" + Organization + "-validator.pem"
	config := strings.Join([]string{
		fmt.Sprintf("node_name '%s'", c.User),
		fmt.Sprintf("client_key '%s'", key),
		fmt.Sprintf("chef_server_url 'https://%s/organizations/%s'", c.Server, Organization),
		fmt.Sprintf("cookbook_path ['%s/cookbooks']", repoDir),
	}, "\\n")

	return join(
		"mkdir -p "+knifeDir,
		fmt.Sprintf("sudo chef-server-ctl user-create %s Inception Admin %s@%s %s --filename %s",
			c.User, c.User, c.Server, quote(c.Password), key),
		fmt.Sprintf("sudo chef-server-ctl org-create %s Inception --association_user %s --filename %s",
			Organization, c.User, validator),
		fmt.Sprintf("sudo chown %s %s/*.pem", c.User, knifeDir),
		fmt.Sprintf("printf %s > %s/config.rb", quote(config+"\\n"), knifeDir),
		"knife ssl fetch",
	)
}

// FetchRepository clones the configuration repository, uploads it to the
// server and creates the cluster environment.
func (c *Commands) FetchRepository(url, branch, environment string) string {
	return join(
		"rm -rf "+repoDir,
		fmt.Sprintf("git clone --branch %s %s %s", quote(branch), quote(url), repoDir),
		fmt.Sprintf("cd %s", repoDir),
		"knife upload / --chef-repo-path .",
		fmt.Sprintf("knife environment create %s --description %s --disable-editing",
			quote(environment), quote("inception cluster "+environment)),
	)
}

// Bootstrap registers the node at address with the server under hostname.
// It runs on the configuration server and relies on agent forwarding to
// reach the node. serverAddress is mapped to the server hostname in the
// node's /etc/hosts before the client first contacts the server.
func (c *Commands) Bootstrap(address, hostname, environment, serverAddress string) string {
	verify := "never"
	if c.StrictHostKeys {
		verify = "accept_new"
	}
	hosts := fmt.Sprintf("grep -q ' %[2]s$' /etc/hosts || echo '%[1]s %[2]s' | sudo tee -a /etc/hosts > /dev/null",
		serverAddress, c.Server)
	return fmt.Sprintf(
		"knife bootstrap %s --connection-user %s --sudo --node-name %s --environment %s --ssh-verify-host-key %s --bootstrap-preinstall-command %s --chef-license accept --yes",
		address, c.User, quote(hostname), quote(environment), verify, quote(hosts))
}

// RunListAdd appends item (a recipe or role) to the node's run-list.
func (c *Commands) RunListAdd(hostname, item string) string {
	return fmt.Sprintf("knife node run_list add %s %s", quote(hostname), quote(item))
}

// RunClient triggers a configuration run on the local node.
func (c *Commands) RunClient() string {
	return "sudo chef-client"
}

func join(cmds ...string) string {
	return strings.Join(cmds, " && ")
}

// quote wraps s in single quotes for sh.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
