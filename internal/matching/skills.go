package matching

import (
	"regexp"
	"strings"
)

// aliasEntry pairs a canonical skill with its known surface forms.
type aliasEntry struct {
	canonical string
	aliases   []string
}

// builtinAliases is iterated in order when the reverse lookup is built, so an
// alias listed under a later entry wins over an earlier one ("tf" -> tensorflow).
var builtinAliases = []aliasEntry{
	{"javascript", []string{"js", "ecmascript", "es6", "es2015", "es2016", "es2017", "es2018", "es2019", "es2020", "es2021", "es2022", "es2023", "vanilla js", "vanilla javascript"}},
	{"typescript", []string{"ts", "type script"}},
	{"react", []string{"reactjs", "react.js", "react js", "react native", "reactnative"}},
	{"vue", []string{"vuejs", "vue.js", "vue js", "vue 2", "vue 3", "vuex", "nuxt", "nuxtjs"}},
	{"angular", []string{"angularjs", "angular.js", "angular js", "angular 2", "angular 4", "angular 8", "angular 12", "angular 14", "angular 15", "angular 16", "angular 17"}},
	{"node", []string{"nodejs", "node.js", "node js"}},
	{"express", []string{"expressjs", "express.js", "express js"}},
	{"next", []string{"nextjs", "next.js", "next js"}},
	{"python", []string{"py", "python2", "python3", "python 2", "python 3"}},
	{"java", []string{"java se", "java ee", "j2ee", "j2se", "jdk", "jre", "openjdk"}},
	{"spring", []string{"spring boot", "springboot", "spring framework", "spring mvc", "spring cloud"}},
	{"postgresql", []string{"postgres", "psql", "pg", "postgre"}},
	{"mysql", []string{"my sql", "mariadb", "maria db"}},
	{"mongodb", []string{"mongo", "mongo db", "mongoose"}},
	{"redis", []string{"redis cache", "redis db"}},
	{"elasticsearch", []string{"elastic search", "elastic", "es", "elk"}},
	{"kubernetes", []string{"k8s", "kube", "k8"}},
	{"amazon web services", []string{"aws", "amazon aws"}},
	{"google cloud platform", []string{"gcp", "google cloud", "gcloud"}},
	{"microsoft azure", []string{"azure", "azure cloud", "ms azure"}},
	{"machine learning", []string{"ml", "machinelearning"}},
	{"deep learning", []string{"dl", "deeplearning"}},
	{"artificial intelligence", []string{"ai"}},
	{"natural language processing", []string{"nlp"}},
	{"computer vision", []string{"cv", "image recognition"}},
	{"data science", []string{"datascience", "data analytics"}},
	{"continuous integration", []string{"ci"}},
	{"continuous deployment", []string{"cd", "continuous delivery"}},
	{"ci/cd", []string{"cicd", "ci cd", "ci-cd"}},
	{"docker", []string{"containerization", "containers", "docker compose", "dockerfile"}},
	{"terraform", []string{"tf", "infrastructure as code", "iac"}},
	{"ansible", []string{"ansible playbook"}},
	{"rest", []string{"restful", "rest api", "restful api", "rest apis"}},
	{"graphql", []string{"gql", "graph ql"}},
	{"sql", []string{"structured query language", "sql server", "mssql", "tsql", "t-sql"}},
	{"nosql", []string{"no sql", "non-relational", "non relational"}},
	{"c++", []string{"cpp", "cplusplus", "c plus plus"}},
	{"c#", []string{"csharp", "c sharp", "c-sharp"}},
	{".net", []string{"dotnet", "dot net", ".net core", "dotnet core", "asp.net", "aspnet"}},
	{"ruby", []string{"ruby on rails", "rails", "ror"}},
	{"php", []string{"laravel", "symfony", "wordpress", "drupal"}},
	{"go", []string{"golang", "go lang"}},
	{"rust", []string{"rustlang", "rust lang"}},
	{"swift", []string{"swiftui", "swift ui", "ios development"}},
	{"kotlin", []string{"android development", "kotlin android"}},
	{"flutter", []string{"dart", "flutter sdk"}},
	{"html", []string{"html5", "html 5"}},
	{"css", []string{"css3", "css 3", "scss", "sass", "less", "stylus", "tailwind", "tailwindcss", "bootstrap"}},
	{"git", []string{"github", "gitlab", "bitbucket", "version control", "source control"}},
	{"agile", []string{"scrum", "kanban", "sprint", "jira", "agile methodology"}},
	{"linux", []string{"unix", "ubuntu", "centos", "debian", "redhat", "rhel", "bash", "shell"}},
	{"windows", []string{"windows server", "powershell"}},
	{"figma", []string{"sketch", "adobe xd", "invision"}},
	{"photoshop", []string{"adobe photoshop", "ps"}},
	{"illustrator", []string{"adobe illustrator", "ai"}},
	{"pandas", []string{"numpy", "scipy", "matplotlib", "seaborn"}},
	{"tensorflow", []string{"tf", "keras", "pytorch", "torch"}},
	{"spark", []string{"apache spark", "pyspark", "spark sql"}},
	{"hadoop", []string{"hdfs", "mapreduce", "hive", "pig"}},
	{"kafka", []string{"apache kafka", "kafka streams"}},
	{"rabbitmq", []string{"rabbit mq", "message queue", "amqp"}},
	{"jenkins", []string{"jenkins ci", "jenkins pipeline"}},
	{"gitlab ci", []string{"gitlab-ci", "gitlab pipeline"}},
	{"github actions", []string{"gh actions"}},
	{"aws lambda", []string{"lambda", "serverless"}},
	{"dynamodb", []string{"dynamo db", "dynamo"}},
	{"s3", []string{"aws s3", "amazon s3", "simple storage"}},
	{"ec2", []string{"aws ec2", "amazon ec2"}},
	{"cloudformation", []string{"cloud formation", "cfn"}},
}

// minSubstringLen guards containment matching against short forms
// ("go" inside "google").
const minSubstringLen = 4

var (
	skillSeparators = regexp.MustCompile(`[.\-_]+`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// NormalizeSkill lower-cases and trims a skill name and collapses separator
// and whitespace runs into single spaces.
func NormalizeSkill(skill string) string {
	s := strings.TrimSpace(strings.ToLower(skill))
	s = skillSeparators.ReplaceAllString(s, " ")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SkillResolver maps skill surface forms to canonical skill names.
// It is immutable after construction and safe for concurrent use.
type SkillResolver struct {
	lookup map[string]string
}

// NewSkillResolver builds a resolver from the built-in alias table, followed
// by any extra canonical -> aliases entries.
func NewSkillResolver(extra map[string][]string) *SkillResolver {
	r := &SkillResolver{lookup: make(map[string]string, 512)}
	for _, entry := range builtinAliases {
		r.register(entry.canonical, entry.aliases)
	}
	for _, canonical := range sortedKeys(extra) {
		r.register(canonical, extra[canonical])
	}
	return r
}

func (r *SkillResolver) register(canonical string, aliases []string) {
	normalizedCanonical := NormalizeSkill(canonical)
	if normalizedCanonical == "" {
		return
	}
	r.lookup[normalizedCanonical] = normalizedCanonical
	for _, alias := range aliases {
		if a := NormalizeSkill(alias); a != "" {
			r.lookup[a] = normalizedCanonical
		}
	}
}

// Size returns the number of surface forms the resolver knows.
func (r *SkillResolver) Size() int {
	return len(r.lookup)
}

// Canonicalize returns the canonical form of a skill. Unknown skills are
// their own canonical form.
func (r *SkillResolver) Canonicalize(skill string) string {
	normalized := NormalizeSkill(skill)
	if canonical, ok := r.lookup[normalized]; ok {
		return canonical
	}
	return normalized
}

// SkillsMatch reports whether two skill names refer to the same skill.
// The relation is symmetric.
func (r *SkillResolver) SkillsMatch(a, b string) bool {
	na, nb := NormalizeSkill(a), NormalizeSkill(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}

	ca, cb := r.canonicalOf(na), r.canonicalOf(nb)
	if ca == cb {
		return true
	}

	return containsGuarded(na, nb) || containsGuarded(ca, cb)
}

func (r *SkillResolver) canonicalOf(normalized string) string {
	if canonical, ok := r.lookup[normalized]; ok {
		return canonical
	}
	return normalized
}

// containsGuarded reports whether the shorter string is contained in the
// longer one, provided the shorter has at least minSubstringLen bytes.
func containsGuarded(a, b string) bool {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) < minSubstringLen {
		return false
	}
	return strings.Contains(longer, shorter)
}

var defaultResolver = NewSkillResolver(nil)

// DefaultResolver returns the process-wide resolver built from the built-in table.
func DefaultResolver() *SkillResolver {
	return defaultResolver
}

// Canonicalize resolves a skill with the default resolver.
func Canonicalize(skill string) string {
	return defaultResolver.Canonicalize(skill)
}

// SkillsMatch compares two skills with the default resolver.
func SkillsMatch(a, b string) bool {
	return defaultResolver.SkillsMatch(a, b)
}
