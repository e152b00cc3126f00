package site

// DefaultHome is shown when the data directory has no home.md.
var DefaultHome = `I build things that are useful and fun, and I like knowing how they work
behind the scenes. Most projects start as a small idea and turn into a chance
to learn something new.

Browse the **CV** for where I have worked and studied, or the **portfolio** for
selected projects grouped by discipline.`
