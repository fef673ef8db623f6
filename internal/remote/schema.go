package remote

// SchemaSQL sets up the remote tables. The access key is a shared anonymous
// credential, so both tables get an allow-all policy.
const SchemaSQL = `-- Create standups table
CREATE TABLE IF NOT EXISTS public.standups (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  date TIMESTAMP WITH TIME ZONE NOT NULL,
  raw_input TEXT NOT NULL,
  generated_output TEXT NOT NULL,
  consistency_notes JSONB DEFAULT '[]'::jsonb,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

-- Create jira_tickets table
CREATE TABLE IF NOT EXISTS public.jira_tickets (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  ticket_key TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  status TEXT NOT NULL,
  link TEXT,
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

-- Sync bookkeeping
CREATE TABLE IF NOT EXISTS public.sync_configs (
  key VARCHAR(255) PRIMARY KEY,
  value TEXT
);

CREATE INDEX IF NOT EXISTS idx_standups_date ON public.standups(date DESC);
CREATE INDEX IF NOT EXISTS idx_tickets_key ON public.jira_tickets(ticket_key);

ALTER TABLE public.standups ENABLE ROW LEVEL SECURITY;
ALTER TABLE public.jira_tickets ENABLE ROW LEVEL SECURITY;

CREATE POLICY "Enable all access" ON public.standups FOR ALL USING (true);
CREATE POLICY "Enable all access" ON public.jira_tickets FOR ALL USING (true);
`
