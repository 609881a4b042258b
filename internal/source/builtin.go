package source

var builtins = []Snippet{
	{
		Name:     "debounce.js",
		Language: "JavaScript",
		Text: `function createDebounce(fn, wait) {
  let timer = null;
  return (...args) => {
    if (timer) {
      clearTimeout(timer);
    }
    timer = setTimeout(() => fn(...args), wait);
  };
}

class EventBus {
  constructor() {
    this.handlers = {};
  }
  subscribe(name, handler) {
    const list = this.handlers[name] || [];
    list.push(handler);
    this.handlers[name] = list;
  }
  notify(name, payload) {
    for (const handler of this.handlers[name] || []) {
      handler(payload);
    }
  }
}`,
	},
	{
		Name:     "cache.go",
		Language: "Go",
		Text: `type Cache struct {
	mu    sync.Mutex
	items map[string]int
}

func NewCache() *Cache {
	return &Cache{items: map[string]int{}}
}

func (c *Cache) Get(key string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *Cache) Put(key string, value int) {
	c.mu.Lock()
	c.items[key] = value
	c.mu.Unlock()
}`,
	},
	{
		Name:     "config.py",
		Language: "Python",
		Text: `import json

class Settings:
    instance = None

    def getInstance(cls):
        if cls.instance is None:
            cls.instance = Settings()
        return cls.instance

def load(path):
    with open(path) as f:
        data = json.load(f)
    retries = data.get("retries", 3)
    return retries * 2`,
	},
	{
		Name:     "stack.rs",
		Language: "Rust",
		Text: `pub struct Stack {
    items: Vec<i32>,
}

impl Stack {
    pub fn new() -> Self {
        Stack { items: Vec::new() }
    }

    pub fn push(&mut self, value: i32) {
        self.items.push(value);
    }

    pub fn pop(&mut self) -> Option<i32> {
        self.items.pop()
    }
}`,
	},
}

// Builtin returns the snippets bundled with the binary.
func Builtin() []Snippet {
	return append([]Snippet(nil), builtins...)
}
